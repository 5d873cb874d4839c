package report

import "errors"

// ErrUnknownFormat is returned when a requested output format is not
// one of text, json, or markdown.
var ErrUnknownFormat = errors.New("unknown report format")
