package sched

// TicksPerSecond models the 100Hz timer rate spec.md assumes throughout
// its MLFQS formulas and TimeSlice constant.
const TicksPerSecond = 100

// Tick advances the scheduler's notion of time by one timer tick, the way
// a hardware timer interrupt vectors into whatever thread happens to be
// running (see doc.go) - it takes mu itself rather than assuming a caller
// already holds it, and may dispatch away from the nominally RUNNING
// thread directly, exactly as a real interrupt handler can.
//
// Ordering: wake any due sleepers first, then (MLFQS only) update
// recent_cpu every tick, recompute load_avg/recent_cpu once a second, and
// recompute every thread's priority every TimeSlice ticks, and only then
// decide whether to preempt.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	s.ticks++
	now := s.ticks
	s.sliceTicks++

	s.wakeDue(now)

	if s.mlfqs {
		s.updateRecentCPU()
		if now%TicksPerSecond == 0 {
			s.updateLoadAvgAndRecentCPU()
		}
		if now%TimeSlice == 0 {
			s.recomputeAllMLFQSPriorities()
		}
	}

	preempt := s.shouldPreemptLocked(now)
	s.mu.Unlock()

	if preempt {
		s.forceYield()
	}
}

// shouldPreemptLocked decides whether the running thread should be forced
// to yield: in either mode, whenever the running thread has exhausted its
// TimeSlice (which rotates it behind equal-priority ready threads) or a
// higher-priority thread is ready.
func (s *Scheduler) shouldPreemptLocked(now int64) bool {
	if s.current == nil || s.current == s.idle {
		return s.ready.Len() > 0
	}
	if s.ready.Len() == 0 {
		return false
	}
	if s.sliceTicks >= TimeSlice {
		return true
	}
	return s.highestReadyPriorityLocked() > s.current.priority
}
