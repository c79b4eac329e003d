package spline

import "errors"

var (
	// ErrNotFitted indicates Evaluate was called before Fit.
	ErrNotFitted = errors.New("spline: evaluate called before fit")

	// ErrBadFactor indicates a non-positive shaping factor. The default
	// factor degenerates when the goal coincides with the origin; callers
	// must supply explicit factors in that case.
	ErrBadFactor = errors.New("spline: shaping factors must be positive")

	// ErrBadTimes indicates a query-time row whose maximum is not positive.
	ErrBadTimes = errors.New("spline: each time row needs a positive maximum")
)
