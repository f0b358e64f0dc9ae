package siunits

// ErrorKind discriminates the validation failures this package reports.
type ErrorKind int

const (
	// EmptyUnit means a unit argument was an empty string.
	EmptyUnit ErrorKind = iota
	// UnknownPrefix means a unit carried an unrecognized SI prefix.
	UnknownPrefix
	// UnitMismatch means units do not share the required base unit.
	UnitMismatch
)

// Error is a tagged validation error for SI unit operations.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string { return "siunits: " + e.msg }
