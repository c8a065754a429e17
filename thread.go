package sched

import "github.com/yunojang/pintos-sched/fixedpoint"

// Scheduling constants, carried over bit-for-bit from threads/thread.h.
const (
	PriMin     = 0  // Lowest thread priority.
	PriDefault = 31 // Priority a thread is created with, absent other info.
	PriMax     = 63 // Highest thread priority.

	NiceMin     = -20
	NiceDefault = 0
	NiceMax     = 20

	// TimeSlice is the number of timer ticks a thread may run before it is
	// forced to yield to the ready list, in either scheduler mode.
	TimeSlice = 4

	// MaxDonationDepth bounds the priority donation chain walk: a thread
	// can only donate through this many nested locks before the walk gives
	// up, matching Pintos's own bounded-depth nested-donation handling.
	MaxDonationDepth = 8
)

// Tid identifies a thread for its lifetime. Tids are assigned from 1 in
// creation order and 0 is never assigned. The idle thread, created first by
// New, gets Tid 1; it is listed by AllThreads but never placed on the ready
// structure.
type Tid int64

// Status is the thread's position in the state machine described in
// spec.md §4.10: RUNNING -> READY -> RUNNING (scheduler's choice), or
// RUNNING -> BLOCKED -> READY (unblocked by a waker), or RUNNING -> DYING
// (self-terminated, reaped asynchronously by the destruction queue).
type Status int

const (
	StatusRunning Status = iota
	StatusReady
	StatusBlocked
	StatusDying
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusReady:
		return "ready"
	case StatusBlocked:
		return "blocked"
	case StatusDying:
		return "dying"
	default:
		return "unknown"
	}
}

// threadMagic guards against stack overflow clobbering the thread struct,
// the same role PINTOS's THREAD_MAGIC sentinel plays at the base of each
// kernel stack. It is never expected to change once set; it is checked when
// the thread's goroutine first receives the baton, and a mismatch is a
// programmer bug, not a recoverable condition.
const threadMagic = 0xcd6abf4b

// Thread is the Go analogue of struct thread: the whole of what the
// scheduler needs to know about one schedulable unit of work. Every Thread
// owns exactly one goroutine, parked on resume except while it holds the
// baton.
type Thread struct {
	magic uint32

	tid    Tid
	name   string
	status Status

	// priority is the thread's effective priority - its own, or the
	// highest of any priority donated to it by a thread blocked on a lock
	// it holds. original holds the priority donation should fall back to
	// once the donating lock is released.
	priority int
	original int

	// acquired is the set of locks this thread currently holds, needed to
	// recompute priority (the max over all waiters on all such locks) when
	// a donation is released. waitingFor is the lock this thread itself is
	// blocked trying to acquire, or nil.
	acquired   map[*Lock]struct{}
	waitingFor *Lock

	// MLFQS-only fields; ignored entirely in priority-scheduler mode.
	nice      int
	recentCPU fixedpoint.Value

	// wakeTick is the absolute tick at which a sleeping thread becomes
	// ready again; see sleep.go.
	wakeTick int64

	// resume is this thread's private baton channel: the scheduler sends
	// on it to hand control to this thread, and the thread's own goroutine
	// blocks receiving from it whenever it is not RUNNING.
	resume chan struct{}

	// fn is the thread's body, run once when the baton first arrives.
	fn func()

	// exitStatus and related parent/child bookkeeping; see child.go.
	exitStatus int
	parent     Tid
	children   *childTable
	waitInfo   *ChildInfo // this thread's own entry in its parent's child table

	sched *Scheduler
}

// Nice returns the thread's MLFQS niceness, meaningful only when the
// scheduler is running in MLFQS mode.
func (t *Thread) Nice() int { return t.nice }

// Priority returns the thread's current effective priority (including any
// donation).
func (t *Thread) Priority() int { return t.priority }

// Tid returns the thread's identifier.
func (t *Thread) Tid() Tid { return t.tid }

// Name returns the thread's human-readable name, for logging only.
func (t *Thread) Name() string { return t.name }

// Status returns the thread's current scheduling state.
func (t *Thread) Status() Status { return t.status }

func (t *Thread) checkMagic() {
	assertf(t.magic == threadMagic, "thread %d (%s) magic number corrupted - stack overflow?", t.tid, t.name)
}
