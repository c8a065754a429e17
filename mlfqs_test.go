package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yunojang/pintos-sched/fixedpoint"
)

func TestMLFQSPriorityFormulaAndClamping(t *testing.T) {
	s := New(WithMLFQS(true))
	s.Start("main")

	t1 := s.newThread("t1", PriDefault, nil)
	t1.recentCPU = fixedpoint.FromInt(0)
	t1.nice = 0
	s.recomputeMLFQSPriority(t1)
	assert.Equal(t, PriMax, t1.priority)

	t2 := s.newThread("t2", PriDefault, nil)
	t2.recentCPU = fixedpoint.FromInt(400) // way beyond any real clamp headroom
	t2.nice = 0
	s.recomputeMLFQSPriority(t2)
	assert.Equal(t, PriMin, t2.priority)

	t3 := s.newThread("t3", PriDefault, nil)
	t3.recentCPU = fixedpoint.FromInt(0)
	t3.nice = NiceMax
	s.recomputeMLFQSPriority(t3)
	assert.Equal(t, PriMax-NiceMax*2, t3.priority)
}

func TestMLFQSPriorityTruncatesFractionalCPUTerm(t *testing.T) {
	s := New(WithMLFQS(true))
	s.Start("main")

	// recent_cpu/4 = 1.5 here: the formula truncates toward zero (spec's
	// "truncated toward zero for the division"), so the CPU term must be 1,
	// not 2 - rounding to nearest would compute PriMax-2 instead.
	t1 := s.newThread("t1", PriDefault, nil)
	t1.recentCPU = fixedpoint.FromInt(6)
	t1.nice = 0
	s.recomputeMLFQSPriority(t1)
	assert.Equal(t, PriMax-1, t1.priority)
}

func TestMLFQSHigherNiceNeverHasHigherPriority(t *testing.T) {
	s := New(WithMLFQS(true))
	s.Start("main")

	lowNice := s.newThread("low-nice", PriDefault, nil)
	lowNice.nice = -5
	highNice := s.newThread("high-nice", PriDefault, nil)
	highNice.nice = 5

	lowNice.recentCPU = fixedpoint.FromInt(10)
	highNice.recentCPU = fixedpoint.FromInt(10)

	s.recomputeMLFQSPriority(lowNice)
	s.recomputeMLFQSPriority(highNice)

	assert.Greater(t, lowNice.priority, highNice.priority)
}

func TestLoadAvgConverges(t *testing.T) {
	s := New(WithMLFQS(true))
	s.Start("main")

	// Nothing is ready but main is running, so one thread counts: load_avg
	// climbs from 0 toward 1, reaching about 1-(59/60)^10 ≈ 0.154 after ten
	// once-a-second updates.
	for i := 0; i < 10; i++ {
		s.updateLoadAvgAndRecentCPU()
	}
	assert.InDelta(t, 0.154, s.LoadAvg(), 0.01)
}
