package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromIntRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, -1, 31, -31, 1000} {
		assert.Equal(t, n, FromInt(n).ToIntTrunc())
	}
}

func TestToIntTruncAndRound(t *testing.T) {
	half := FromInt(5).DivInt(2) // 2.5
	assert.Equal(t, 2, half.ToIntTrunc())
	assert.Equal(t, 3, half.ToIntRound())

	negHalf := FromInt(-5).DivInt(2) // -2.5
	assert.Equal(t, -2, negHalf.ToIntTrunc())
	assert.Equal(t, -3, negHalf.ToIntRound())
}

func TestArithmetic(t *testing.T) {
	a := FromInt(3)
	b := FromInt(2)

	assert.Equal(t, 5, a.Add(b).ToIntTrunc())
	assert.Equal(t, 1, a.Sub(b).ToIntTrunc())
	assert.Equal(t, 6, a.Mul(b).ToIntTrunc())
	assert.Equal(t, 7, a.AddInt(4).ToIntTrunc())
	assert.Equal(t, -1, a.SubInt(4).ToIntTrunc())
	assert.Equal(t, 9, a.MulInt(3).ToIntTrunc())
	assert.Equal(t, 2, a.DivInt(2).ToIntRound())
}

func TestLoadAvgConstants(t *testing.T) {
	// 59/60 + 1/60 should be ~1.0 within one fixed-point unit.
	sum := Frac59Over60.Add(Frac1Over60)
	assert.InDelta(t, 1.0, float64(sum)/float64(f), 0.001)
}

func TestDiv(t *testing.T) {
	ten := FromInt(10)
	three := FromInt(3)
	got := ten.Div(three)
	assert.InDelta(t, 10.0/3.0, float64(got)/float64(f), 0.0005)
}
