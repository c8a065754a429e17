package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinglePriorityDonation(t *testing.T) {
	s := New()
	self := s.Start("main")
	lock := NewLock(s)

	low, err := s.Create("low", PriMin+2, func() {
		lock.Acquire()
		s.Unblock(self)
		s.Block() // park here, still holding the lock, until released below.
		lock.Release()
	})
	require.NoError(t, err)

	s.Block() // returns once low holds the lock.

	_, err = s.Create("high", PriMax-2, func() {
		lock.Acquire() // contends with low, donating our priority to it.
		lock.Release()
	})
	require.NoError(t, err)

	waitFor(t, func() bool { return low.Priority() == PriMax-2 })

	s.Unblock(low)
	waitFor(t, func() bool { return low.Priority() == PriMin+2 })
}

func TestNestedPriorityDonation(t *testing.T) {
	s := New()
	self := s.Start("main")
	lockA := NewLock(s)
	lockB := NewLock(s)

	low, err := s.Create("low", PriMin+1, func() {
		lockA.Acquire()
		s.Unblock(self)
		s.Block() // holds lockA until released below.
		lockA.Release()
	})
	require.NoError(t, err)

	s.Block() // returns once low holds lockA.

	mid, err := s.Create("mid", PriDefault, func() {
		lockB.Acquire()
		s.Unblock(self)
		lockA.Acquire() // blocks on low, donating through to it - by the time
		// this call parks, the donation chain has already run, so main (woken
		// just above, same priority as mid so not dispatched until mid blocks
		// here) observes the updated priority as soon as it resumes.
		lockA.Release()
		s.Block() // holds lockB until released below.
		lockB.Release()
	})
	require.NoError(t, err)

	s.Block() // returns once mid has acquired lockB and donated through to low.

	_, err = s.Create("high", PriMax, func() {
		lockB.Acquire() // blocks on mid, donating through mid to low.
		lockB.Release()
	})
	require.NoError(t, err)

	assert.Equal(t, PriMax, low.Priority())
	assert.Equal(t, PriMax, mid.Priority())

	s.Unblock(low)
	waitFor(t, func() bool { return low.Priority() == PriMin+1 })

	s.Unblock(mid)
	waitFor(t, func() bool { return mid.Priority() == PriDefault })
}

func TestDonationChainBoundaryAtMaxDepth(t *testing.T) {
	s := New()
	self := s.Start("main")

	// A chain of 9 links: donate() walks at most MaxDonationDepth (8) of
	// them, so threads 1..8 must end up raised to the waiter's priority
	// while thread 9, the 9th link, must not.
	const n = 9
	locks := make([]*Lock, n+1)
	for i := 1; i <= n; i++ {
		locks[i] = NewLock(s)
	}
	threads := make([]*Thread, n+1)

	th, err := s.Create("link9", PriMin+1, func() {
		locks[9].Acquire()
		s.Unblock(self)
		s.Block() // holds locks[9] until released below.
		locks[9].Release()
	})
	require.NoError(t, err)
	threads[9] = th
	s.Block() // returns once link9 holds locks[9].

	for i := n - 1; i >= 1; i-- {
		i := i
		th, err := s.Create("link", PriMin+1, func() {
			locks[i].Acquire()
			s.Unblock(self)
			locks[i+1].Acquire() // blocks on link(i+1), donating through the chain.
			locks[i+1].Release()
			s.Block() // holds locks[i] until released below.
			locks[i].Release()
		})
		require.NoError(t, err)
		threads[i] = th
		s.Block() // returns once linkI holds locks[i]; it parks on locks[i+1] the next time main gives up the CPU.
	}

	// link1 still has to park on locks[2]. Dropping main below the links lets
	// it run and park, and keeps main out of the way while the chain unwinds.
	s.SetPriority(PriMin)

	_, err = s.Create("waiter", PriMax, func() {
		locks[1].Acquire() // blocks on link1, donating through the whole chain.
		locks[1].Release()
	})
	require.NoError(t, err)

	for i := 1; i <= 8; i++ {
		assert.Equal(t, PriMax, threads[i].Priority())
	}
	assert.Equal(t, PriMin+1, threads[9].Priority())

	for i := n; i >= 1; i-- {
		s.Unblock(threads[i])
		waitFor(t, func() bool { return threads[i].Priority() == PriMin+1 })
	}
}

func TestLockNotReentrant(t *testing.T) {
	s := New()
	s.Start("main")
	lock := NewLock(s)

	panicked := make(chan any, 1)
	// Created above main's priority so Create's own preempt check - not a
	// bare Yield, which would now be a no-op between equal-priority threads
	// - dispatches straight to worker.
	_, err := s.Create("worker", PriDefault+1, func() {
		defer func() { panicked <- recover() }()
		lock.Acquire()
		lock.Acquire()
	})
	require.NoError(t, err)

	select {
	case p := <-panicked:
		assert.NotNil(t, p)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a panic from re-acquiring a held lock")
	}
}
