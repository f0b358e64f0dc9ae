package runner

// ErrorKind discriminates the scheduling failures this package reports.
type ErrorKind int

const (
	// BudgetExhausted means the hard time budget expired before a single
	// measured iteration was recorded.
	BudgetExhausted ErrorKind = iota
)

// Error is a tagged scheduling error. Action errors are never wrapped in it;
// they propagate unchanged.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return "runner: " + e.msg }
