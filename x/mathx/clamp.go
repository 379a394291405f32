package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Between reports lo <= v && v <= hi (order-insensitive).
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// Lerp maps t in [0,1] onto [lo, hi]. t outside [0,1] is clamped.
func Lerp[T constraints.Float](lo, hi, t T) T {
	return lo + (hi-lo)*Clamp(t, 0, 1)
}

// Frac is the inverse of Lerp: where v sits in [lo, hi], clamped to [0,1].
// A degenerate range yields 0.
func Frac[T constraints.Float](v, lo, hi T) T {
	if hi == lo {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}
