package sched

import "sync"

// ChildInfo is this module's analogue of struct child_info: a record a
// parent keeps for each child it has forked, so that a later Wait can
// rendezvous with that specific child's exit - even if the child has
// already exited by the time Wait is called, or the parent never waits at
// all. spec.md treats fork/wait/exit as interface-only; this is the
// supplemented mechanism behind that interface, grounded on
// original_source/pintos/threads/thread.c's child_list/children_lock.
type ChildInfo struct {
	tid        Tid
	waitSema   *Semaphore
	exitStatus int
	exited     bool
	reaped     bool
}

// childTable is the parent-side bookkeeping for every child it has forked
// and not yet reaped. It is guarded by its own mutex, independent of the
// scheduler's interrupt-disable mutex, per spec.md §5: a parent walking or
// mutating its child list must never do so while also holding the global
// scheduler lock for an unbounded time.
type childTable struct {
	mu   sync.Mutex
	list []*ChildInfo
}

func newChildTable() *childTable {
	return &childTable{}
}

// Fork creates a new thread running fn(arg), at the given priority, and
// links a ChildInfo for it into the calling thread's child table so that a
// later Wait(tid) can rendezvous with it. It returns ErrNoThreads if fn is
// nil.
func (s *Scheduler) Fork(name string, priority int, fn func(arg any), arg any) (Tid, error) {
	if fn == nil {
		return 0, ErrNoThreads
	}
	parent := s.Current()
	if parent.children == nil {
		parent.children = newChildTable()
	}

	info := &ChildInfo{waitSema: NewSemaphore(s, 0)}

	child, err := s.createWithInit(name, priority, func() { fn(arg) }, func(c *Thread) {
		c.parent = parent.tid
		c.waitInfo = info
		info.tid = c.tid
	})
	if err != nil {
		return 0, err
	}

	parent.children.mu.Lock()
	parent.children.list = append(parent.children.list, info)
	parent.children.mu.Unlock()

	return child.tid, nil
}

// Wait blocks until the child identified by tid has exited, then reaps
// and returns its exit status. ok is false if tid does not identify a
// child of the calling thread, or that child has already been reaped by a
// previous Wait - a thread may wait for a given child at most once,
// exactly as process_wait documents.
func (s *Scheduler) Wait(tid Tid) (exitStatus int, ok bool) {
	parent := s.Current()
	if parent.children == nil {
		return 0, false
	}

	parent.children.mu.Lock()
	var info *ChildInfo
	for _, c := range parent.children.list {
		if c.tid == tid && !c.reaped {
			info = c
			break
		}
	}
	parent.children.mu.Unlock()
	if info == nil {
		return 0, false
	}

	info.waitSema.Down()

	parent.children.mu.Lock()
	info.reaped = true
	parent.children.mu.Unlock()

	return info.exitStatus, true
}

// ExitWithStatus records status for whichever parent is (or later will be)
// waiting on the calling thread, then exits. It is the supplemented
// analogue of process_exit's status hookup; file descriptors and address
// space teardown remain out of scope, per spec.md's Non-goals.
func (s *Scheduler) ExitWithStatus(status int) {
	s.Exit(status)
}
