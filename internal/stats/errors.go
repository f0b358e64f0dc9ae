package stats

// ErrorKind discriminates the validation failures this package reports.
type ErrorKind int

const (
	// BlankUnit means the unit argument was empty.
	BlankUnit ErrorKind = iota
	// NonPositiveScale means the scale argument was zero or negative.
	NonPositiveScale
	// NonPositiveRounds means the rounds argument was below 1.
	NonPositiveRounds
	// EmptyData means no samples were supplied.
	EmptyData
	// BadSummaryField means a summary field carried an out-of-range value.
	BadSummaryField
)

// Error is a tagged validation error for statistics construction.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return "stats: " + e.msg }
