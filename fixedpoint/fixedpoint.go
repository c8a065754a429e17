// Package fixedpoint implements the 17.14 signed fixed-point format used by
// the MLFQS scheduler: a 32-bit signed integer representing f·2⁻¹⁴, with
// enough headroom (17 integer bits) for recent_cpu and load_avg to never
// realistically overflow.
package fixedpoint

// shift is the number of fractional bits; f (1<<shift) represents 1.0.
const shift = 14

// f is the fixed-point representation of 1.0.
const f = 1 << shift

// Value is a 17.14 fixed-point number.
type Value int32

// Frac59Over60 and Frac1Over60 are the MLFQS load_avg smoothing constants,
// precomputed once in fixed-point form.
var (
	Frac59Over60 = FromInt(59).DivInt(60)
	Frac1Over60  = FromInt(1).DivInt(60)
)

// FromInt converts an integer to fixed-point.
func FromInt(n int) Value {
	return Value(n * f)
}

// ToIntTrunc converts to an integer, truncating toward zero.
func (x Value) ToIntTrunc() int {
	return int(x) / f
}

// ToIntRound converts to an integer, rounding to nearest, ties away from zero.
func (x Value) ToIntRound() int {
	if x >= 0 {
		return int(x+f/2) / f
	}
	return int(x-f/2) / f
}

// Add returns x + y.
func (x Value) Add(y Value) Value {
	return x + y
}

// Sub returns x - y.
func (x Value) Sub(y Value) Value {
	return x - y
}

// AddInt returns x + n.
func (x Value) AddInt(n int) Value {
	return x + Value(n*f)
}

// SubInt returns x - n.
func (x Value) SubInt(n int) Value {
	return x - Value(n*f)
}

// Mul returns x * y, widening to 64 bits for the intermediate product.
func (x Value) Mul(y Value) Value {
	return Value(int64(x) * int64(y) / f)
}

// MulInt returns x * n.
func (x Value) MulInt(n int) Value {
	return x * Value(n)
}

// Div returns x / y, widening to 64 bits for the intermediate product.
func (x Value) Div(y Value) Value {
	return Value(int64(x) * f / int64(y))
}

// DivInt returns x / n.
func (x Value) DivInt(n int) Value {
	return x / Value(n)
}
