package sched

// Cond is a Mesa-style condition variable: Wait atomically releases an
// associated Lock and blocks, then reacquires the lock before returning.
// Because it is Mesa-style (not Hoare-style), a woken waiter is only made
// READY, not guaranteed to run next - callers must always re-check their
// condition in a loop, exactly as spec.md §4.8 and synch.c's cond_wait
// both require.
//
// Unlike Lock and Semaphore, Cond has no state of its own beyond its
// waiter list: each waiter parks on a private one-shot semaphore, and
// Signal wakes the single highest-priority one.
type Cond struct {
	sched   *Scheduler
	waiters []*condWaiter
}

type condWaiter struct {
	thread *Thread
	sema   *Semaphore
}

// NewCond constructs a condition variable bound to s.
func NewCond(s *Scheduler) *Cond {
	return &Cond{sched: s}
}

// Wait releases lock, blocks until woken by Signal or Broadcast, then
// reacquires lock before returning. The caller must hold lock.
func (c *Cond) Wait(lock *Lock) {
	s := c.sched
	w := &condWaiter{thread: s.Current(), sema: NewSemaphore(s, 0)}

	s.mu.Lock()
	c.waiters = append(c.waiters, w)
	s.mu.Unlock()

	lock.Release()
	w.sema.Down()
	lock.Acquire()
}

// Signal wakes the single highest-priority thread waiting on c, if any.
// The caller must hold the same lock as every waiter.
func (c *Cond) Signal() {
	s := c.sched
	s.mu.Lock()
	if len(c.waiters) == 0 {
		s.mu.Unlock()
		return
	}
	idx := 0
	for i := 1; i < len(c.waiters); i++ {
		if c.waiters[i].thread.priority > c.waiters[idx].thread.priority {
			idx = i
		}
	}
	w := c.waiters[idx]
	c.waiters = append(c.waiters[:idx], c.waiters[idx+1:]...)
	s.mu.Unlock()

	w.sema.Up()
}

// Broadcast wakes every thread currently waiting on c.
func (c *Cond) Broadcast() {
	for {
		s := c.sched
		s.mu.Lock()
		empty := len(c.waiters) == 0
		s.mu.Unlock()
		if empty {
			return
		}
		c.Signal()
	}
}
