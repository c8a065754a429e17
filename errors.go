package sched

import "fmt"

// ErrNoThreads is returned by Create/Fork when fn is nil - the Go
// analogue of thread_create failing a bad-argument check before it ever
// touches the thread table (a real exhausted-kernel-stack-pages failure
// has no equivalent here, since Go threads carry no fixed-size stack).
var ErrNoThreads = fmt.Errorf("sched: no thread function given")

// assertf panics if cond is false. It exists to mark precondition
// violations - programmer bugs, not recoverable runtime conditions - the
// same way the teacher's invariant comments imply a crash rather than a
// returned error.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("sched: assertion failed: "+format, args...))
	}
}
