package sched

import "github.com/joeycumines/logiface"

// Logger is the structured-logging facade accepted throughout this package.
// It is always the erased *logiface.Logger[logiface.Event] form - the core
// scheduler never references a concrete backend (zerolog, stumpy, or
// otherwise); only cmd/kernelsim wires one in.
type Logger = logiface.Logger[logiface.Event]

// logDebugf is a nil-safe helper: every call site in this package goes
// through it so a Scheduler constructed without a logger pays nothing but a
// nil check.
func logDebugf(l *Logger, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	ev := l.Debug()
	if ev == nil {
		return
	}
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			ev = ev.Str(k, val)
		case int:
			ev = ev.Int(k, val)
		case int64:
			ev = ev.Int64(k, val)
		case bool:
			ev = ev.Bool(k, val)
		default:
			ev = ev.Any(k, val)
		}
	}
	ev.Log(msg)
}
