package model

import "github.com/oklog/ulid/v2"

// NewID generates a new ULID string for use as a benchmark run identifier.
// ULIDs sort lexicographically by creation time, which keeps run listings in
// execution order without a separate sequence column.
func NewID() string {
	return ulid.Make().String()
}
