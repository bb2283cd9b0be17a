package chatmood

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Decide maps combined class evidence to a label.
//
// The comparison order is fixed and asymmetric: positive is only weighed
// against negative once it beats neutral outright, so a positive/neutral
// tie is settled by neutral against negative.
func Decide(d Distribution) Label {
	if d.Positive > d.Neutral {
		if d.Positive > d.Negative {
			return Positive
		}
		return Negative
	}
	if d.Neutral > d.Negative {
		return Neutral
	}
	return Negative
}

// Normalize scales d so its classes sum to 1. It reports false when the
// sum is zero or not finite, in which case d carries no usable evidence.
func Normalize(d Distribution) (Distribution, bool) {
	v := d.Slice()
	sum := floats.Sum(v)
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Distribution{}, false
	}
	for i := range v {
		v[i] /= sum
	}
	return distributionOf(v), true
}
