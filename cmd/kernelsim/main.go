// Command kernelsim boots a Scheduler, spawns a handful of demonstration
// threads, and drives the timer tick by hand, to make the priority
// scheduler (or, with -mlfqs, the feedback-queue scheduler) observable
// from the outside. It is not part of the library; it exists the way a
// teaching kernel ships a handful of test programs alongside the kernel
// itself.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/yunojang/pintos-sched"
)

func main() {
	mlfqs := flag.Bool("mlfqs", false, "use the multi-level feedback queue scheduler instead of strict priority")
	verbose := flag.Bool("v", false, "enable debug-level scheduler logging")
	ticks := flag.Int("ticks", 200, "number of timer ticks to simulate")
	flag.Parse()

	level := logiface.LevelInformational
	if *verbose {
		level = logiface.LevelDebug
	}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stdout)),
		stumpy.L.WithLevel(level),
	).Logger()

	s := sched.New(sched.WithMLFQS(*mlfqs), sched.WithLogger(logger))
	self := s.Start("main")

	spawnDonationDemo(s, self, logger)

	for i := 0; i < *ticks; i++ {
		s.Tick()
		time.Sleep(time.Millisecond)
	}
}

// spawnDonationDemo creates a low-priority thread holding a lock, and a
// high-priority thread that blocks on it, to make priority donation
// visible in the log output.
//
// Under strict priority scheduling main (PriDefault) outranks the
// low-priority holder and would simply never let it run - Yield only
// requeues the caller and dispatches the highest-priority ready thread,
// which stays main. So main must actually Block, and the low-priority
// thread Unblocks it back once the lock is safely held, the same
// rendezvous thread_block/thread_unblock give two real kernel threads.
func spawnDonationDemo(s *sched.Scheduler, self *sched.Thread, logger *logiface.Logger[logiface.Event]) {
	lock := sched.NewLock(s)

	low, err := s.Create("low-priority-holder", sched.PriMin+1, func() {
		lock.Acquire()
		logger.Info().Int(`priority`, s.Current().Priority()).Log(`low-priority thread acquired the lock`)
		s.Unblock(self)
		time.Sleep(5 * time.Millisecond)
		lock.Release()
		logger.Info().Log(`low-priority thread released the lock`)
	})
	if err != nil {
		logger.Err().Err(err).Log(`failed to create low-priority thread`)
		return
	}
	_ = low

	s.Block() // wakes once low has the lock, via s.Unblock(self) above.

	_, err = s.Create("high-priority-waiter", sched.PriMax-1, func() {
		logger.Info().Log(`high-priority thread waiting for the lock`)
		lock.Acquire()
		logger.Info().Int(`priority`, s.Current().Priority()).Log(`high-priority thread acquired the lock (after donation)`)
		lock.Release()
	})
	if err != nil {
		logger.Err().Err(err).Log(`failed to create high-priority thread`)
	}

	fmt.Fprintln(os.Stdout, `simulation started`)
}
