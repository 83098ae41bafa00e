// Package questions turns raw model output into an ordered list of interview questions.
package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"prepwise/internal/utils"
)

// Mode records which stage produced a Result.
type Mode string

const (
	// ModeClean means the model returned a well formed JSON array.
	ModeClean Mode = "clean"
	// ModeDegraded means the array had to be dug out of prose, or the line
	// heuristic was used.
	ModeDegraded Mode = "degraded"
)

// ErrEmptyArray is reported when the model answered with a JSON array that
// holds no usable question.
var ErrEmptyArray = errors.New("model returned an empty array")

type Result struct {
	Questions []string
	Mode      Mode
	// ParseErr is the strict-stage failure that forced a degraded parse.
	ParseErr error
}

// leadingMarker matches one enumeration marker: "1.", "2)", a bullet, or
// opening JSON punctuation. Digits that belong to the question ("3D", "401k")
// are not followed by "." or ")" plus a space and so survive.
var leadingMarker = regexp.MustCompile("^\\s*(?:\\d{1,3}[.)](?:\\s+|$)|[-*•·](?:\\s+|$)|[\\[\"'`]+)")

// Parse never fails. A JSON array is used as is; an array embedded in prose is
// dug out; anything else goes through the line heuristic. Non-blank input
// yields at least one question unless it is an empty JSON array.
func Parse(raw string, limit int) Result {
	text := utils.StripFences(raw)

	questions, err := parseStrict(text)
	if err == nil {
		if len(questions) == 0 {
			return Result{Mode: ModeClean, ParseErr: ErrEmptyArray}
		}
		return Result{Questions: capAt(questions, limit), Mode: ModeClean}
	}

	if embedded, ok := extractArray(text); ok {
		return Result{Questions: capAt(embedded, limit), Mode: ModeDegraded, ParseErr: err}
	}

	return Result{
		Questions: capAt(parseLines(text), limit),
		Mode:      ModeDegraded,
		ParseErr:  err,
	}
}

func parseStrict(text string) ([]string, error) {
	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case nil:
			continue
		case map[string]any, []any:
			return nil, fmt.Errorf("array element is not a scalar: %T", item)
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// extractArray decodes the span from the first '[' to the last ']' when the
// model wrapped its array in commentary.
func extractArray(text string) ([]string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start || (start == 0 && end == len(text)-1) {
		return nil, false
	}
	questions, err := parseStrict(text[start : end+1])
	if err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func parseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if q := cleanLine(line); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// cleanLine strips one enumeration marker plus any opening quote or bracket,
// and trailing JSON residue such as `",` or `"]`.
func cleanLine(line string) string {
	for {
		loc := leadingMarker.FindStringIndex(line)
		if loc == nil || loc[1] == 0 {
			break
		}
		line = line[loc[1]:]
	}
	line = strings.TrimRightFunc(line, isTrailingResidue)
	return strings.TrimSpace(line)
}

func isTrailingResidue(r rune) bool {
	switch r {
	case '"', '\'', ',', ']', '`':
		return true
	}
	return unicode.IsSpace(r)
}

func capAt(questions []string, limit int) []string {
	if limit > 0 && len(questions) > limit {
		return questions[:limit]
	}
	return questions
}
