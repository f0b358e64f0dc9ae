package model

// ErrorKind discriminates the validation failures this package reports.
type ErrorKind int

const (
	// BlankField means a required string field was empty.
	BlankField ErrorKind = iota
	// BadIteration means an iteration carried an out-of-range figure.
	BadIteration
	// BadTimeRange means min/max time limits are inverted or non-positive.
	BadTimeRange
	// BadCount means an iteration or round count was out of range.
	BadCount
	// UnknownVariationCol means a variation column labels a kwarg that has
	// no declared variations.
	UnknownVariationCol
	// MissingAction means a case has no action to benchmark.
	MissingAction
	// NoIterations means a Results was built without measured iterations.
	NoIterations
)

// Error is a tagged validation error for benchmark case and result
// construction.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return "model: " + e.msg }
