package pipeline

import "errors"

var (
	// ErrNoDocument is returned by the extract step when the fetch step
	// has not stored a page document on the report.
	ErrNoDocument = errors.New("no fetched document on report")

	// ErrNoSnapshot is returned by the analyze step when the extract
	// step has not stored a page snapshot on the report.
	ErrNoSnapshot = errors.New("no page snapshot on report")
)
