package fetch

import "errors"

var (
	// ErrPageTooLarge is returned when the response body exceeds the
	// configured maximum size.
	ErrPageTooLarge = errors.New("page too large")

	// ErrBadStatus is returned when the server responds with an HTTP
	// error status (4xx or 5xx).
	ErrBadStatus = errors.New("page returned error status")
)
