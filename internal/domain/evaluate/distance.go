package evaluate

import (
	"math"

	"github.com/okian/peergrade/internal/domain/gradefloat"
	"github.com/okian/peergrade/internal/domain/model"
)

// minVariance is the variance floor below which a dimension carries no usable
// signal. Dimensions at or below it are excluded from distance calculations
// to avoid instability when nearly all reviewers agree.
const minVariance = 0.01

// Distance computes the weighted, variance-normalized distance between two
// assessment-like grade maps over the given dimension set. Both maps must
// hold normalized (0-100) grades and diminfo must already carry the batch
// variances.
//
// A dimension contributes only when its variance is known and above
// minVariance and the two grades differ; matching grades and near-zero
// variance dimensions do not discriminate between reviewers. Per contributing
// dimension d the term is
//
//	|a-r| * (a-r)^2 / (sensitivity * variance[d]) * weight[d]
//
// The squared difference amplifies large disagreements relative to the
// dimension's natural spread, while the absolute delta keeps the metric
// scale-linear. The result is the weight-averaged sum, rounded to the grade
// float convention, or nil when no dimension contributed.
func Distance(a, r map[string]float64, diminfo map[string]model.DimensionInfo, sensitivity float64) *float64 {
	var distance, n float64
	for dimid, dim := range diminfo {
		if dim.Variance == nil || *dim.Variance <= minVariance {
			continue
		}
		aval, rval := a[dimid], r[dimid]
		if gradefloat.Equal(aval, rval) {
			continue
		}
		absDelta := math.Abs(aval - rval)
		relDelta := (aval - rval) * (aval - rval) / (sensitivity * *dim.Variance)
		distance += absDelta * relDelta * dim.Weight
		n += dim.Weight
	}
	if n == 0 {
		return nil
	}
	d := gradefloat.Round(distance / n)
	return &d
}
