package mcl

import "errors"

// Sentinel errors returned by the filter. Callers classify with
// errors.Is; the returned errors wrap these with call-site context.
var (
	// ErrConfig indicates an invalid filter configuration, such as a
	// non-positive particle count or noise deviation.
	ErrConfig = errors.New("invalid filter configuration")

	// ErrFilterNotInitialized indicates Predict, Update or Resample was
	// called before Init.
	ErrFilterNotInitialized = errors.New("filter not initialized")

	// ErrNoCandidateLandmark indicates association was attempted with an
	// empty candidate landmark set while observations were present.
	ErrNoCandidateLandmark = errors.New("no candidate landmark")

	// ErrDegenerateWeights indicates the weight vector cannot form a
	// sampling distribution (all zero, or any negative/NaN entry).
	ErrDegenerateWeights = errors.New("degenerate particle weights")
)
