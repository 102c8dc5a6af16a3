// Package gradefloat implements the fixed-precision rounding and tolerance
// based comparison convention used for all grade values. Keeping grades at a
// fixed number of decimal places avoids floating-point noise triggering
// spurious persistence updates.
package gradefloat

import "math"

// Precision settings for the grade float convention.
const (
	// Decimals is the number of decimal places grades are kept to.
	Decimals = 5

	// Epsilon bounds the difference under which two rounded grades are
	// considered equal.
	Epsilon = 0.00001
)

var shift = math.Pow(10, Decimals)

// Round rounds a grade to Decimals decimal places, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*shift) / shift
}

// Equal reports whether two grades are equal under the convention.
func Equal(a, b float64) bool {
	return math.Abs(Round(a)-Round(b)) < Epsilon
}

// Different reports whether two grades differ beyond the tolerance.
func Different(a, b float64) bool {
	return !Equal(a, b)
}
