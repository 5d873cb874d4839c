package llm

import "errors"

// Sentinel errors returned by the llm package.
var (
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrNoImages is returned when a vision call is attempted with no
	// usable images.
	ErrNoImages = errors.New("no images available for vision request")

	// ErrNoJSONObject is returned when a response contains no JSON
	// object in any recognized form.
	ErrNoJSONObject = errors.New("response contains no JSON object")

	// ErrMissingScore is returned when extracted JSON lacks a numeric
	// score field. Callers treat this the same as malformed JSON.
	ErrMissingScore = errors.New("assessment JSON is missing a numeric score")

	// ErrNotAnImage is returned when fetched bytes do not decode as a
	// supported image format.
	ErrNotAnImage = errors.New("fetched content is not a decodable image")
)
