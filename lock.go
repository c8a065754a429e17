package sched

// Lock is a mutual-exclusion lock with priority donation: if a
// higher-priority thread blocks trying to acquire a lock held by a
// lower-priority one, the holder's effective priority is temporarily
// raised (donated) so it can finish and release the lock promptly,
// preventing unbounded priority inversion. It is built directly on top of
// Semaphore, exactly as lock_init/lock_acquire/lock_release do in synch.c.
type Lock struct {
	sched  *Scheduler
	sema   *Semaphore
	holder *Thread
}

// NewLock constructs an unheld lock bound to s.
func NewLock(s *Scheduler) *Lock {
	return &Lock{sched: s, sema: NewSemaphore(s, 1)}
}

// HeldByCurrent reports whether the calling thread already holds l. Lock is
// not reentrant; acquiring a lock you already hold is a programmer bug.
func (l *Lock) HeldByCurrent() bool {
	s := l.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	return l.holder == s.current
}

// Acquire blocks until l is free, then takes it, donating the calling
// thread's priority along the chain of locks if the current holder (and
// any lock it is in turn waiting on) has a lower priority.
func (l *Lock) Acquire() {
	s := l.sched
	s.mu.Lock()
	t := s.current
	reentrant := l.holder == t
	if reentrant {
		s.mu.Unlock() // do not leave mu held when the assertion panics.
	}
	assertf(!reentrant, "thread %d attempted to re-acquire a lock it already holds", t.tid)

	if l.holder != nil {
		t.waitingFor = l
		l.donate(t)
	}
	s.mu.Unlock()

	l.sema.Down()

	s.mu.Lock()
	t.waitingFor = nil
	l.holder = t
	t.acquired[l] = struct{}{}
	logDebugf(s.log, "lock acquired", map[string]any{"tid": int64(t.tid)})
	s.mu.Unlock()
}

// TryAcquire attempts Acquire without blocking or donating, reporting
// whether it succeeded.
func (l *Lock) TryAcquire() bool {
	s := l.sched
	if !l.sema.TryDown() {
		return false
	}
	s.mu.Lock()
	t := s.current
	l.holder = t
	t.acquired[l] = struct{}{}
	s.mu.Unlock()
	return true
}

// Release gives up l, recomputing the calling thread's effective priority
// from its remaining donations (if any), and wakes the next waiter.
func (l *Lock) Release() {
	s := l.sched
	s.mu.Lock()
	t := s.current
	assertf(l.holder == t, "thread %d released a lock it does not hold", t.tid)
	delete(t.acquired, l)
	l.holder = nil
	recomputeDonatedPriority(t)
	s.mu.Unlock()

	l.sema.Up()
}

// donate walks the chain of locks starting from the thread waiting on l,
// raising every holder's effective priority to at least waiter's, up to
// MaxDonationDepth links - matching thread.c's bounded nested-donation
// walk (a thread can only wait on one lock at a time, so the chain is a
// simple path, never a tree).
func (l *Lock) donate(waiter *Thread) {
	cur := l
	donor := waiter
	for depth := 0; depth < MaxDonationDepth; depth++ {
		holder := cur.holder
		if holder == nil {
			return
		}
		if holder.priority >= donor.priority {
			return
		}
		holder.priority = donor.priority
		repositionIfReady(holder)

		next := holder.waitingFor
		if next == nil {
			return
		}
		cur = next
		donor = holder
	}
}

// repositionIfReady re-sorts t within the ready structure after its
// priority has changed while it was already READY (the ready structure
// sorts by priority, so a donation needs to move it).
func repositionIfReady(t *Thread) {
	if t.status != StatusReady {
		return
	}
	s := t.sched
	if s.ready.Remove(t) {
		s.ready.Push(t)
	}
}

// recomputeDonatedPriority restores t.priority to the max of its own
// original priority and whatever its remaining held locks' waiters are
// donating, mirroring lock_release's "fall back, then re-scan" step.
func recomputeDonatedPriority(t *Thread) {
	best := t.original
	for lk := range t.acquired {
		if lk.holder != t {
			continue
		}
		for _, w := range lk.sema.waiters {
			if w.priority > best {
				best = w.priority
			}
		}
	}
	t.priority = best
}
