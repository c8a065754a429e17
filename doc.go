// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package sched implements the concurrency core of a small teaching
// operating system: a preemptible thread scheduler with priority donation,
// a companion multi-level feedback queue (MLFQS) mode, and the
// synchronization primitives built on top of both (counting semaphore,
// donating lock, Mesa-style condition variable, tick-driven sleep).
//
// ## Overview
//
// There is exactly one hardware collaborator this package cannot provide in
// software: a single CPU whose interrupt flag can be masked to get mutual
// exclusion for free. Instead, each kernel thread is one goroutine, and at
// most one of them is ever allowed to do useful work at a time. That
// goroutine is said to hold the *baton* - a capacity-1 channel per thread
// used purely as a hand-off signal, never as a data channel. A thread gives
// up the baton only by calling into the scheduler (block, yield, exit) or by
// being preempted at the next timer tick; the scheduler picks the next
// thread to run and passes the baton to it directly, exactly the way
// real Pintos performs a register-level context switch from one kernel
// stack to the next.
//
// "Disabling interrupts" is modelled as a single, non-reentrant mutex
// (Scheduler.mu). This works because Pintos's own discipline is strict
// save/restore bracketing that never double-disables before restoring - the
// same discipline a plain sync.Mutex requires. Because Go (unlike pthreads)
// lets any goroutine unlock a mutex that a different goroutine locked, the
// mutex can stay locked across a baton hand-off and be unlocked later by
// whichever thread's code path reaches the matching restore point - which is
// precisely how the interrupt flag, carried in a thread's saved trap frame,
// survives a context switch in the original C kernel.
//
// The timer tick (Scheduler.Tick) is not a background goroutine: a real
// timer interrupt runs on the same CPU as whatever it preempts, on that
// thread's own stack, and only afterwards decides whether to hand off to
// someone else. Tick reproduces that directly - it is meant to be called
// by an external driver (the cmd/kernelsim demo loop, or a test) the same
// way a hardware timer vectors into the currently running thread's trap
// frame, and it may freely dispatch away from whatever is nominally
// RUNNING because nothing else is genuinely executing at the instant it
// is called.
package sched
