package sched

// sleepList holds every thread blocked in SleepUntil, ordered by nothing
// in particular - timer.go scans it every tick and wakes anyone whose
// wakeTick has arrived. A real kernel keeps this sorted to bound the scan;
// the thread counts this module deals with make a linear scan every tick
// perfectly adequate, so it is not sorted, matching the timer_sleep design
// note in spec.md §9 that prioritizes simplicity over scan cost at this
// scale.
type sleepList struct {
	threads []*Thread
}

func newSleepList() *sleepList {
	return &sleepList{}
}

// SleepUntil blocks the calling thread until the scheduler's tick counter
// reaches wakeTick, at or after which the timer tick handler will unblock
// it. Like timer_sleep, this is built on Block/Unblock, not a busy loop. If
// wakeTick has already arrived, it returns immediately without blocking.
func (s *Scheduler) SleepUntil(wakeTick int64) {
	s.mu.Lock()
	if wakeTick <= s.ticks {
		s.mu.Unlock()
		return
	}
	t := s.current
	t.status = StatusBlocked
	t.wakeTick = wakeTick
	s.sleepers.threads = append(s.sleepers.threads, t)
	s.dispatch()
	s.mu.Unlock()
}

// wakeDue is called by the timer tick handler (already holding mu) to move
// every sleeper whose wakeTick has arrived back onto the ready list.
func (s *Scheduler) wakeDue(now int64) {
	remaining := s.sleepers.threads[:0]
	for _, t := range s.sleepers.threads {
		if t.wakeTick <= now {
			t.status = StatusReady
			s.ready.Push(t)
		} else {
			remaining = append(remaining, t)
		}
	}
	s.sleepers.threads = remaining
}
