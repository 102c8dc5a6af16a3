package evaluate

// WeightedVariance accumulates a weighted population variance using West's
// (1979) incremental one-pass algorithm. The accumulation is numerically
// stable and exact regardless of the order values are added in.
type WeightedVariance struct {
	mean      float64
	s         float64 // sum of squared weighted deviations
	sumWeight float64
	n         int // number of nonzero-weight values seen
}

// Add folds one (value, weight) pair into the accumulator. Zero-weight pairs
// are skipped entirely so they affect neither the mean nor the count.
func (v *WeightedVariance) Add(x, w float64) {
	if w == 0 {
		return
	}
	temp := w + v.sumWeight
	q := x - v.mean
	r := q * w / temp
	v.s += v.sumWeight * q * r
	v.mean += r
	v.sumWeight = temp
	v.n++
}

// Result returns the weighted population variance, or nil when it is
// indeterminate: fewer than two weighted values, or zero total weight.
func (v *WeightedVariance) Result() *float64 {
	if v.n < 2 || v.sumWeight == 0 {
		return nil
	}
	variance := v.s / v.sumWeight
	return &variance
}
