package sched

// Semaphore is a classic counting semaphore, the foundation every other
// synchronization primitive in this package (Lock, Cond, and child
// rendezvous) is built on top of, exactly as in synch.c. Sleep does not use
// it; see sleep.go.
//
// Semaphore itself never imports sync: its value is protected by the
// Scheduler's own interrupt-disable mutex, because Down may need to block
// (transition the caller out of RUNNING) and Up may need to wake a
// higher-priority waiter and immediately yield to it - both scheduler
// decisions.
type Semaphore struct {
	sched   *Scheduler
	value   int
	waiters []*Thread // FIFO among equal priority, like Pintos's waiters list.
}

// NewSemaphore constructs a semaphore with the given initial value, bound
// to s. Binding is required because Down/Up must call into the scheduler
// to block/unblock the caller.
func NewSemaphore(s *Scheduler, value int) *Semaphore {
	assertf(value >= 0, "semaphore initial value must be >= 0, got %d", value)
	return &Semaphore{sched: s, value: value}
}

// Down waits for the semaphore's value to become positive, then
// atomically decrements it. The calling goroutine must be running as one
// of sched's threads.
func (sem *Semaphore) Down() {
	s := sem.sched
	s.mu.Lock()
	for sem.value == 0 {
		t := s.current
		t.status = StatusBlocked
		sem.waiters = append(sem.waiters, t)
		s.dispatch()
	}
	sem.value--
	s.mu.Unlock()
}

// TryDown attempts Down without blocking, reporting whether it succeeded.
func (sem *Semaphore) TryDown() bool {
	s := sem.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	if sem.value == 0 {
		return false
	}
	sem.value--
	return true
}

// Up increments the semaphore's value and, if any thread is waiting,
// wakes the single highest-priority one (FIFO among equal priorities),
// matching sema_up's "wake just one waiter" contract. If the woken thread
// now outranks the caller, the caller immediately yields to it.
func (sem *Semaphore) Up() {
	s := sem.sched
	s.mu.Lock()
	preempt := sem.upLocked()
	s.mu.Unlock()
	if preempt {
		s.Yield()
	}
}

// upLocked is Up's body, callable by scheduler internals (Exit, on behalf
// of a dying thread signalling its parent's wait semaphore) that already
// hold mu. It reports whether the caller should now yield.
func (sem *Semaphore) upLocked() bool {
	s := sem.sched
	sem.value++
	if len(sem.waiters) == 0 {
		return false
	}
	idx := highestPriorityIndex(sem.waiters)
	t := sem.waiters[idx]
	sem.waiters = append(sem.waiters[:idx], sem.waiters[idx+1:]...)
	return s.unblockLocked(t)
}

// highestPriorityIndex returns the index of the highest-priority thread in
// ts, breaking ties in favor of the earliest (FIFO) entry.
func highestPriorityIndex(ts []*Thread) int {
	best := 0
	for i := 1; i < len(ts); i++ {
		if ts[i].priority > ts[best].priority {
			best = i
		}
	}
	return best
}
