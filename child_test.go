package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForkWaitRendezvous(t *testing.T) {
	s := New()
	main := s.Start("main")
	_ = main

	childTid, err := s.Fork("child", PriDefault, func(arg any) {
		n := arg.(int)
		s.ExitWithStatus(n * 2)
	}, 21)
	require.NoError(t, err)

	status, ok := s.Wait(childTid)
	require.True(t, ok)
	assert.Equal(t, 42, status)
}

func TestWaitOnUnknownChildFails(t *testing.T) {
	s := New()
	s.Start("main")

	_, ok := s.Wait(Tid(9999))
	assert.False(t, ok)
}

func TestWaitTwiceOnSameChildFailsSecondTime(t *testing.T) {
	s := New()
	s.Start("main")

	childTid, err := s.Fork("child", PriDefault, func(arg any) {
		s.ExitWithStatus(7)
	}, nil)
	require.NoError(t, err)

	status, ok := s.Wait(childTid)
	require.True(t, ok)
	assert.Equal(t, 7, status)

	_, ok = s.Wait(childTid)
	assert.False(t, ok)
}
