package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Assessment is the JSON shape agents request from the model: a score,
// a list of findings, and a one-sentence summary.
type Assessment struct {
	Score    float64  `json:"score"`
	Findings []string `json:"findings"`
	Summary  string   `json:"summary"`
}

// fencedBlockPattern matches the first markdown code fence, with or
// without a json language tag. Models frequently wrap their answer in
// one despite being told not to.
var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// braceSpanPattern matches from the first opening brace to the last
// closing brace, covering responses that bury the object in prose.
var braceSpanPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseAssessment extracts an Assessment from a raw model response.
// Three extraction tiers run in order, first success wins:
//  1. the whole text as a JSON object
//  2. the content of the first fenced code block
//  3. the widest brace-delimited span
//
// Candidates that fail strict decoding get one repair attempt through
// jsonrepair before the tier is abandoned; model output is routinely
// valid-looking JSON with trailing commas or unquoted keys. A candidate
// without a single opening brace is never repaired, so prose with no
// object in it cannot be coerced into one.
//
// A missing or non-numeric score field fails the tier even when the
// JSON itself decodes, since a scoreless assessment is useless to the
// caller.
func ParseAssessment(text string) (*Assessment, error) {
	// Tier 1: the response is the object.
	a, lastErr := decodeAssessment(text)
	if lastErr == nil {
		return a, nil
	}

	// Tier 2: the object is inside a code fence.
	if m := fencedBlockPattern.FindStringSubmatch(text); m != nil {
		a, err := decodeAssessment(m[1])
		if err == nil {
			return a, nil
		}
		lastErr = err
	}

	// Tier 3: the object is buried in surrounding prose.
	if span := braceSpanPattern.FindString(text); span != "" {
		a, err := decodeAssessment(span)
		if err == nil {
			return a, nil
		}
		lastErr = err
	}

	// Without a brace anywhere there was never an object to extract;
	// otherwise surface what went wrong with the best candidate.
	if !strings.Contains(text, "{") {
		return nil, ErrNoJSONObject
	}
	return nil, lastErr
}

// rawAssessment defers field decoding so that near-miss payloads
// (numeric strings, a lone finding instead of a list) can still be
// salvaged.
type rawAssessment struct {
	Score    json.RawMessage `json:"score"`
	Findings json.RawMessage `json:"findings"`
	Summary  json.RawMessage `json:"summary"`
}

// decodeAssessment decodes one candidate string into an Assessment.
func decodeAssessment(candidate string) (*Assessment, error) {
	var raw rawAssessment
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		repaired, ok := tryRepair(candidate)
		if !ok {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("decode repaired assessment: %w", err)
		}
	}

	score, err := decodeScore(raw.Score)
	if err != nil {
		return nil, err
	}

	return &Assessment{
		Score:    score,
		Findings: decodeFindings(raw.Findings),
		Summary:  decodeString(raw.Summary),
	}, nil
}

// tryRepair runs jsonrepair on the candidate. Candidates without an
// opening brace are rejected outright: repair must mend a broken
// object, not invent one from plain text.
func tryRepair(candidate string) (string, bool) {
	if !strings.Contains(candidate, "{") {
		return "", false
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return "", false
	}
	return repaired, true
}

// decodeScore accepts a JSON number or a numeric string. A missing
// field or anything else fails the assessment.
func decodeScore(raw json.RawMessage) (float64, error) {
	if raw == nil {
		return 0, ErrMissingScore
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if num, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return num, nil
		}
	}

	return 0, ErrMissingScore
}

// decodeFindings accepts a string list. A lone string is wrapped into a
// single-element list; any other shape yields no findings rather than
// failing the assessment.
func decodeFindings(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}

	return nil
}

// decodeString returns the string value or empty for any other shape.
func decodeString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
