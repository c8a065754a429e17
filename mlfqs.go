package sched

import "github.com/yunojang/pintos-sched/fixedpoint"

// SetNice sets the calling thread's niceness and immediately recomputes
// its priority, yielding if it is no longer the highest-priority ready
// thread - mirroring thread_set_nice.
func (s *Scheduler) SetNice(nice int) {
	if nice < NiceMin {
		nice = NiceMin
	}
	if nice > NiceMax {
		nice = NiceMax
	}
	s.mu.Lock()
	t := s.current
	t.nice = nice
	s.recomputeMLFQSPriority(t)
	preempt := s.ready.Len() > 0 && s.current.priority < s.highestReadyPriorityLocked()
	s.mu.Unlock()
	if preempt {
		s.Yield()
	}
}

// LoadAvg returns the system load average as a float, for display/testing.
func (s *Scheduler) LoadAvg() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.loadAvg) / float64(1<<14)
}

func (s *Scheduler) highestReadyPriorityLocked() int {
	if s.mlfqs {
		for p := PriMax; p >= PriMin; p-- {
			if len(s.ready.buckets[p]) > 0 {
				return p
			}
		}
		return PriMin
	}
	if len(s.ready.list) == 0 {
		return PriMin
	}
	return s.ready.list[0].priority
}

// recomputeMLFQSPriority applies spec.md §4.5's priority formula:
//
//	priority = PRI_MAX - (recent_cpu / 4) - (nice * 2)
//
// clamped to [PRI_MIN, PRI_MAX]. Callers must hold mu. If t is currently
// READY, it is repositioned in its bucket to reflect the new priority.
func (s *Scheduler) recomputeMLFQSPriority(t *Thread) {
	if !s.mlfqs {
		return
	}
	cpuTerm := t.recentCPU.DivInt(4).ToIntTrunc()
	niceTerm := t.nice * 2
	p := PriMax - cpuTerm - niceTerm
	if p < PriMin {
		p = PriMin
	}
	if p > PriMax {
		p = PriMax
	}
	if p == t.priority {
		return
	}
	wasReady := t.status == StatusReady
	if wasReady {
		s.ready.Remove(t)
	}
	t.priority = p
	if wasReady {
		s.ready.Push(t)
	}
}

// recomputeAllMLFQSPriorities recomputes every thread's priority, called
// once every TimeSlice (4) ticks per spec.md §4.5. The timer tick handler
// already holds mu for the whole tick (hardware interrupts stay masked for
// its duration); this walks a snapshot of the thread table taken via
// AllThreads, which locks the separate allMu rather than mu, per the
// separate-lock requirement in spec.md §5.
func (s *Scheduler) recomputeAllMLFQSPriorities() {
	all := s.AllThreads()
	for _, t := range all {
		if t == s.idle {
			continue
		}
		s.recomputeMLFQSPriority(t)
	}
}

// updateRecentCPU increments the running thread's recent_cpu by 1 every
// tick (spec.md §4.5), excluding the idle thread, which never accrues CPU
// time of its own.
func (s *Scheduler) updateRecentCPU() {
	if s.current != nil && s.current != s.idle {
		s.current.recentCPU = s.current.recentCPU.AddInt(1)
	}
}

// updateLoadAvgAndRecentCPU recomputes the system load average and every
// thread's recent_cpu, once per second (spec.md §4.5):
//
//	load_avg = (59/60)*load_avg + (1/60)*ready_threads
//	recent_cpu = (2*load_avg)/(2*load_avg+1)*recent_cpu + nice
//
// ready_threads counts every thread that is RUNNING or READY, excluding
// idle, matching thread.c's ready_list + 1-if-running-and-not-idle count.
func (s *Scheduler) updateLoadAvgAndRecentCPU() {
	ready := s.ready.Len()
	if s.current != nil && s.current != s.idle {
		ready++
	}
	s.loadAvg = fixedpoint.Frac59Over60.Mul(s.loadAvg).Add(fixedpoint.Frac1Over60.MulInt(ready))

	coeff := s.loadAvg.MulInt(2).Div(s.loadAvg.MulInt(2).AddInt(1))
	all := s.AllThreads()
	for _, t := range all {
		if t == s.idle {
			continue
		}
		t.recentCPU = coeff.Mul(t.recentCPU).AddInt(t.nice)
	}
}
