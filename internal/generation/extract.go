package generation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Greedy: first '{' through last '}'.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

var (
	errNoContent = errors.New("empty reply")
	errNotObject = errors.New("reply is not a JSON object")
)

// locateJSON returns the greedy {...} span of raw, or all of raw when there is none.
func locateJSON(raw string) string {
	if span := jsonSpan.FindString(raw); span != "" {
		return span
	}
	return raw
}

// ExtractJSON finds the JSON object embedded in a model reply and parses it.
// Replies that parse to anything other than an object are a *ParseError.
func ExtractJSON(raw string) (map[string]any, error) {
	var out map[string]any
	if err := extractInto(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &ParseError{Raw: raw, Err: errNotObject}
	}
	return out, nil
}

func extractInto(raw string, dst any) error {
	if strings.TrimSpace(raw) == "" {
		return &ParseError{Raw: raw, Err: errNoContent}
	}
	if err := json.Unmarshal([]byte(locateJSON(raw)), dst); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}
