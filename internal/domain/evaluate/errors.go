package evaluate

import "errors"

// Sentinel kinds for evaluation errors.
var (
	// ErrInvalidScale marks a rubric dimension whose max equals its min,
	// which makes normalization undefined. This is a configuration error
	// and aborts the whole recalculation.
	ErrInvalidScale = errors.New("dimension scale has equal min and max")

	// ErrUnknownDimension marks a grade record referencing a dimension the
	// grading strategy did not declare.
	ErrUnknownDimension = errors.New("grade references an unknown dimension")

	// ErrDimensionMismatch marks a batch whose assessments do not all cover
	// the same set of dimensions.
	ErrDimensionMismatch = errors.New("assessments in a batch cover different dimensions")
)
