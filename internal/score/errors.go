package score

import "errors"

// ErrMissingDimension is returned when the result map lacks one of the
// five dimension keys. The dispatcher guarantees all five, so hitting
// this means a wiring bug, not bad input.
var ErrMissingDimension = errors.New("missing dimension result")
