package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondSignalWakesHighestPriorityWaiter(t *testing.T) {
	s := New()
	self := s.Start("main")
	lock := NewLock(s)
	cond := NewCond(s)

	ready := false
	var order []string

	_, err := s.Create("low", PriDefault-1, func() {
		lock.Acquire()
		s.Unblock(self)
		for !ready {
			cond.Wait(lock)
		}
		order = append(order, "low")
		lock.Release()
		s.Unblock(self)
	})
	require.NoError(t, err)
	s.Block() // returns once low holds the lock and is about to wait.

	_, err = s.Create("high", PriDefault+1, func() {
		lock.Acquire()
		for !ready {
			cond.Wait(lock)
		}
		order = append(order, "high")
		lock.Release()
	})
	require.NoError(t, err)

	lock.Acquire()
	ready = true
	cond.Signal()
	cond.Signal()
	lock.Release()

	s.Block() // returns once low has recorded itself and handed back.
	assert.Equal(t, []string{"high", "low"}, order)
}

func TestCondBroadcastWakesEveryWaiter(t *testing.T) {
	s := New()
	self := s.Start("main")
	lock := NewLock(s)
	cond := NewCond(s)

	ready := false
	woken := 0
	entered := 0
	const n = 3
	for i := 0; i < n; i++ {
		_, err := s.Create("waiter", PriDefault, func() {
			lock.Acquire()
			entered++
			if entered == n {
				s.Unblock(self)
			}
			for !ready {
				cond.Wait(lock)
			}
			woken++
			lock.Release()
			if woken == n {
				s.Unblock(self)
			}
		})
		require.NoError(t, err)
	}

	s.Block() // returns once every waiter has registered on cond and parked.

	lock.Acquire()
	ready = true
	cond.Broadcast()
	lock.Release()

	s.Block() // returns once every waiter has woken, recorded itself, and handed back.
	assert.Equal(t, n, woken)
}
