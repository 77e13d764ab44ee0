// Package parser turns free-form generation backend output into validated quiz
// questions and concepts. Decoding runs an ordered recovery pipeline and ends in a
// deterministic fallback, so callers always receive a structurally valid result.
package parser

import (
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

// Stage names the recovery step that produced a result.
type Stage string

const (
	StageDirect       Stage = "direct"
	StageBraceExtract Stage = "brace_extract"
	StageCommaRepair  Stage = "comma_repair"
	StageFallback     Stage = "fallback"
)

// ErrNoJSON is returned by a stage that finds nothing to decode.
var ErrNoJSON = errors.New("no JSON object found")

var (
	braceRe         = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Parser decodes backend output. The zero value is not usable; call New.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// DecodeDirect parses the whole trimmed text, ignoring a surrounding markdown code fence.
func DecodeDirect(text string, v any) error {
	s := stripCodeFences(text)
	if s == "" {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(s), v)
}

// ExtractBraces returns the span from the first '{' to the last '}'.
func ExtractBraces(text string) (string, bool) {
	m := braceRe.FindString(text)
	return m, m != ""
}

// DecodeBraceExtract parses the brace-delimited span of text.
func DecodeBraceExtract(text string, v any) error {
	s, ok := ExtractBraces(text)
	if !ok {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(s), v)
}

// RepairTrailingCommas drops commas that directly precede a closing '}' or ']'.
func RepairTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// DecodeCommaRepair parses the brace-delimited span after trailing comma repair.
func DecodeCommaRepair(text string, v any) error {
	s, ok := ExtractBraces(text)
	if !ok {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(RepairTrailingCommas(s)), v)
}

type stageFunc struct {
	stage  Stage
	decode func(text string, v any) error
}

var pipeline = []stageFunc{
	{StageDirect, DecodeDirect},
	{StageBraceExtract, DecodeBraceExtract},
	{StageCommaRepair, DecodeCommaRepair},
}

// decode runs the stages in order, each into a fresh T, and returns the first
// conversion that convert accepts. ok is false when every stage failed.
func decode[T, R any](text string, convert func(T) (R, bool)) (result R, stage Stage, ok bool) {
	for _, s := range pipeline {
		var v T
		if err := s.decode(text, &v); err != nil {
			continue
		}
		if r, accepted := convert(v); accepted {
			return r, s.stage, true
		}
	}
	var zero R
	return zero, StageFallback, false
}

func stripCodeFences(src string) string {
	s := strings.TrimSpace(src)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	body := lines[1:]
	if last == "```" {
		body = lines[1 : len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// truncateRunes cuts s to max runes, appending "..." when it was longer.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// flexString decodes a JSON string, number or boolean into text. null decodes to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*f = "true"
		} else {
			*f = "false"
		}
		return nil
	}
	return errors.New("expected a scalar value")
}

// lenientList decodes a JSON array element by element and drops the elements that do
// not decode into T.
type lenientList[T any] []T

func (l *lenientList[T]) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}
