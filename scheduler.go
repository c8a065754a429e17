package sched

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/yunojang/pintos-sched/fixedpoint"
)

// Scheduler owns every piece of global state spec.md assigns to the
// scheduler core: the ready structure, the currently running thread, the
// all-threads registry, the destruction queue, and (in MLFQS mode) the
// system load average. mu is the single mutex standing in for the
// interrupt-disable discipline described in doc.go; it must be held by
// whichever goroutine is manipulating any of the fields above.
type Scheduler struct {
	mu sync.Mutex

	ready   *readyQueue
	current *Thread
	idle    *Thread

	mlfqs   bool
	loadAvg fixedpoint.Value

	// allMu guards allThreads independently of mu, so that thread
	// enumeration (AllThreads) does not need mu. The MLFQS sweeps run from
	// Tick, which holds mu for the whole tick, so they hold both.
	allMu      sync.Mutex
	allThreads map[Tid]*Thread

	// dying holds threads in StatusDying awaiting destruction: Pintos
	// cannot free a thread's own kernel stack while it is still running on
	// it, so the outgoing thread's cleanup is deferred to whichever thread
	// dispatch runs next. We keep the same queue purely for fidelity - Go's
	// garbage collector would reclaim a Thread on its own, but the sequencing
	// (never touch a DYING thread's resources until a different goroutine is
	// running) is part of what this module is teaching.
	dying []*Thread

	nextTid int64
	ticks   int64

	// sliceTicks counts timer ticks the current thread has held the CPU for
	// since its last dispatch, reset to 0 every time dispatch runs. Compared
	// against TimeSlice to force a round-robin preemption, per spec.md
	// §4.3's "resets the slice counter" and §4.4's "increment slice
	// counter" - a per-dispatch counter, not a function of the global tick
	// count, so a thread always gets a full slice regardless of which tick
	// it happened to start on.
	sliceTicks int

	sleepers *sleepList

	log *Logger
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithMLFQS selects the multi-level feedback queue scheduler instead of the
// strict priority scheduler. This may only be set at construction; spec.md
// treats it as a boot-time flag, never toggled live.
func WithMLFQS(on bool) Option {
	return func(s *Scheduler) { s.mlfqs = on }
}

// WithLogger attaches a structured logger. A nil logger (the default) is
// valid and simply disables logging.
func WithLogger(l *Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New constructs a Scheduler and its idle thread, but does not yet start
// running anything - call Start from the goroutine that should become the
// initial RUNNING thread.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		allThreads: make(map[Tid]*Thread),
		loadAvg:    0,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ready = newReadyQueue(s.mlfqs)
	s.sleepers = newSleepList()

	s.idle = s.newThread("idle", PriMin, func() {
		for {
			s.mu.Unlock() // "sti" - re-enable interrupts and wait for one.
			runtime.Gosched()
			s.mu.Lock()
			s.dispatch()
		}
	})
	s.idle.status = StatusBlocked // never placed on the ready list itself.

	return s
}

// Start installs the calling goroutine as the first RUNNING thread (the
// Go analogue of thread_init's bootstrap of the "main" kernel thread) and
// launches the idle thread's goroutine. It starts no timer: Tick is driven
// by the caller.
func (s *Scheduler) Start(name string) *Thread {
	s.mu.Lock()
	main := s.newThread(name, PriDefault, nil)
	main.status = StatusRunning
	s.current = main
	s.mu.Unlock()

	go s.runThread(s.idle)

	return main
}

// newThread allocates a Thread, assigns it a Tid, and registers it in
// allThreads. Callers must hold mu for the priority/status fields to be
// consistent, except during New before any goroutine but this one exists.
func (s *Scheduler) newThread(name string, priority int, fn func()) *Thread {
	tid := Tid(atomic.AddInt64(&s.nextTid, 1))
	t := &Thread{
		magic:     threadMagic,
		tid:       tid,
		name:      name,
		status:    StatusBlocked,
		priority:  priority,
		original:  priority,
		acquired:  make(map[*Lock]struct{}),
		nice:      NiceDefault,
		recentCPU: 0,
		resume:    make(chan struct{}, 1),
		fn:        fn,
		sched:     s,
	}
	s.allMu.Lock()
	s.allThreads[tid] = t
	s.allMu.Unlock()
	return t
}

// Create spawns a new thread at the given priority, running fn, and makes
// it ready. It is the Go analogue of thread_create.
func (s *Scheduler) Create(name string, priority int, fn func()) (*Thread, error) {
	return s.createWithInit(name, priority, fn, nil)
}

// createWithInit is Create's body, plus an optional init callback run
// while the new thread is still fully private to the caller (registered
// in allThreads, but not yet READY or running) - used by Fork to link a
// ChildInfo in before the child goroutine can possibly exit and need it.
func (s *Scheduler) createWithInit(name string, priority int, fn func(), init func(*Thread)) (*Thread, error) {
	if fn == nil {
		return nil, ErrNoThreads
	}
	s.mu.Lock()
	t := s.newThread(name, priority, fn)
	if init != nil {
		init(t)
	}
	t.status = StatusReady
	s.ready.Push(t)
	logDebugf(s.log, "thread created", map[string]any{"tid": int64(t.tid), "name": name, "priority": priority})
	preempt := s.current != nil && t.priority > s.current.priority
	s.mu.Unlock()

	go s.runThread(t)

	if preempt {
		s.Yield()
	}
	return t, nil
}

// runThread is the body every thread goroutine (other than the bootstrap
// "main" thread installed by Start) actually executes: park on the baton,
// run the thread's function exactly once when it first arrives, then exit.
// The dispatcher that hands over the baton still holds mu; a new thread
// releases it before running its function, while the idle thread's own
// loop starts by releasing it.
func (s *Scheduler) runThread(t *Thread) {
	<-t.resume
	t.checkMagic()
	if t != s.idle {
		s.mu.Unlock()
	}
	if t.fn != nil {
		t.fn()
	}
	if t != s.idle {
		s.Exit(0)
	}
}

// dispatch picks the next thread to run and performs the baton hand-off.
// Callers must hold mu and must be the currently RUNNING thread's own
// goroutine (or, for the very first call, the Start bootstrap). On return,
// mu is held again and the caller is once more the RUNNING thread - exactly
// the semantics of schedule() returning to whichever thread called it.
func (s *Scheduler) dispatch() {
	s.reapDying()

	s.sliceTicks = 0

	next, ok := s.ready.PopHighest()
	if !ok {
		next = s.idle
	}
	prev := s.current
	s.current = next
	next.status = StatusRunning

	logDebugf(s.log, "dispatch", map[string]any{
		"from": threadLogName(prev), "to": threadLogName(next),
	})

	if next == prev {
		return
	}

	// Read prev's status before the hand-off: once next holds the baton it
	// may change prev.status (e.g. by unblocking it).
	wait := prev != nil && prev.status != StatusDying
	next.resume <- struct{}{}
	if wait {
		<-prev.resume
	}
}

func threadLogName(t *Thread) string {
	if t == nil {
		return "<none>"
	}
	return t.name
}

// reapDying frees the bookkeeping for any thread that exited on a previous
// dispatch. Deferred exactly one dispatch, the way Pintos can only free a
// thread's kernel stack once a different thread is definitely running on
// its own.
func (s *Scheduler) reapDying() {
	for _, t := range s.dying {
		s.allMu.Lock()
		delete(s.allThreads, t.tid)
		s.allMu.Unlock()
	}
	s.dying = s.dying[:0]
}

// Block transitions the calling thread (which must be s.current) to
// BLOCKED and yields the CPU to the next ready thread. It returns once this
// thread has been Unblock'd and dispatched again.
func (s *Scheduler) Block() {
	s.mu.Lock()
	t := s.current
	assertf(t != nil, "Block called with no current thread")
	t.status = StatusBlocked
	s.dispatch()
	s.mu.Unlock()
}

// Unblock moves t from BLOCKED to READY, preempting the caller immediately
// if t now outranks whichever thread is running - the one place this
// module goes beyond base thread_unblock (which never yields) to satisfy
// spec.md §4.3's immediate-preemption invariant.
func (s *Scheduler) Unblock(t *Thread) {
	s.mu.Lock()
	preempt := s.unblockLocked(t)
	s.mu.Unlock()
	if preempt {
		s.Yield()
	}
}

// unblockLocked is Unblock's body, shared with Semaphore.upLocked. Callers
// must hold mu. It reports whether the calling thread should now yield.
func (s *Scheduler) unblockLocked(t *Thread) bool {
	assertf(t.status == StatusBlocked, "Unblock called on thread %d in state %s", t.tid, t.status)
	t.status = StatusReady
	s.ready.Push(t)
	return s.current != nil && t.priority > s.current.priority
}

// Yield voluntarily gives up the CPU. Per spec.md §4.3/§8, if no READY
// thread currently outranks the caller, it returns immediately without
// touching the ready structure or dispatching - avoiding pointless churn
// when nothing would actually change. Otherwise it requeues the caller at
// its current priority and dispatches the next thread.
func (s *Scheduler) Yield() {
	s.mu.Lock()
	t := s.current
	if t == s.idle || s.ready.Len() == 0 || s.highestReadyPriorityLocked() <= t.priority {
		s.mu.Unlock()
		return
	}
	t.status = StatusReady
	s.ready.Push(t)
	s.dispatch()
	s.mu.Unlock()
}

// forceYield unconditionally requeues the caller and dispatches, even
// among threads of equal priority. It backs Tick's TIME_SLICE expiry
// preemption (spec.md §4.4 item 2, an unconditional deferred yield, unlike
// the voluntary yield() operation's outranks-only contract), which is how
// round-robin fairness among equal-priority threads actually happens in
// this scheduler.
func (s *Scheduler) forceYield() {
	s.mu.Lock()
	t := s.current
	if t != s.idle {
		t.status = StatusReady
		s.ready.Push(t)
	}
	s.dispatch()
	s.mu.Unlock()
}

// SetPriority sets the calling thread's own (original) priority, the Go
// analogue of thread_set_priority. If no lock it holds is currently
// donating it a higher priority, its effective priority changes too, so
// set_priority(p) followed by get_priority() reports p when no donation is
// active (spec.md §8). Lowering priority below a now-higher-ranked ready
// thread yields immediately, exactly as thread_set_priority does.
func (s *Scheduler) SetPriority(priority int) {
	s.mu.Lock()
	t := s.current
	t.original = priority
	recomputeDonatedPriority(t)
	preempt := s.ready.Len() > 0 && s.highestReadyPriorityLocked() > t.priority
	s.mu.Unlock()
	if preempt {
		s.Yield()
	}
}

// Exit transitions the calling thread to DYING, records its exit status for
// a waiting parent (see child.go), and never returns: the goroutine parks
// permanently once dispatch hands control elsewhere.
func (s *Scheduler) Exit(status int) {
	s.mu.Lock()
	t := s.current
	t.status = StatusDying
	t.exitStatus = status
	s.dying = append(s.dying, t)
	if t.waitInfo != nil {
		t.waitInfo.exitStatus = status
		t.waitInfo.exited = true
		t.waitInfo.waitSema.upLocked()
	}
	logDebugf(s.log, "thread exit", map[string]any{"tid": int64(t.tid), "status": status})
	s.dispatch()
	// dispatch returns at once for a DYING thread without waiting for the
	// baton; mu now belongs to the next thread, which releases it itself.
	select {}
}

// Current returns the calling goroutine's own Thread. It is only valid to
// call from within a thread body scheduled by this Scheduler.
func (s *Scheduler) Current() *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ActivateHook stands in for process_activate: installing a process's page
// table on dispatch. User-level address spaces are out of scope (spec.md
// Non-goals), so this defaults to a no-op and exists purely as an
// extension point; dispatch does not call it.
var ActivateHook = func(t *Thread) {}

// AllThreads returns a snapshot slice of every currently registered
// thread, used by thread enumeration and the MLFQS recompute sweep. It
// takes allMu, not mu, per the separate-lock requirement in spec.md §5.
func (s *Scheduler) AllThreads() []*Thread {
	s.allMu.Lock()
	defer s.allMu.Unlock()
	out := make([]*Thread, 0, len(s.allThreads))
	for _, t := range s.allThreads {
		out = append(out, t)
	}
	return out
}
