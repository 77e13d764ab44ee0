package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"learnloop/internal/contextutil"
)

// QuestionType distinguishes multiple choice from free text questions.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeText           QuestionType = "text"
)

// OptionCount is the number of options every multiple choice question carries.
const OptionCount = 4

// DefaultExplanation is used when the backend omits an explanation.
const DefaultExplanation = "Review the source material to see why this answer is correct."

// QuizQuestion is a validated quiz question. For multiple choice questions
// Options has OptionCount entries and Options[CorrectIndex] == CorrectAnswer.
// Text questions have no options and a CorrectIndex of -1.
type QuizQuestion struct {
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectIndex  int          `json:"correct_index"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
}

// Validate checks the structural invariants of q.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question text is required")
	}
	switch q.Type {
	case TypeMultipleChoice:
		if len(q.Options) != OptionCount {
			return fmt.Errorf("multiple choice question needs %d options, has %d", OptionCount, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
			return fmt.Errorf("correct_index %d out of range", q.CorrectIndex)
		}
		if q.Options[q.CorrectIndex] != q.CorrectAnswer {
			return errors.New("correct_answer does not match the option at correct_index")
		}
	case TypeText:
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

// QuizResult is the outcome of ParseQuiz.
type QuizResult struct {
	Questions []QuizQuestion
	Stage     Stage
}

type rawQuiz struct {
	Questions lenientList[rawQuestion] `json:"questions"`
}

type rawQuestion struct {
	Question      flexString `json:"question"`
	Type          flexString `json:"type"`
	Options       flexList   `json:"options"`
	Correct       flexString `json:"correct"`
	CorrectIndex  flexString `json:"correct_index"`
	CorrectAnswer flexString `json:"correct_answer"`
	Explanation   flexString `json:"explanation"`
}

// flexList decodes an array of scalars, an object of scalars ordered by key, or a
// single scalar.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var arr []flexString
	if err := json.Unmarshal(data, &arr); err == nil {
		out := make([]string, len(arr))
		for i, v := range arr {
			out[i] = string(v)
		}
		*l = out
		return nil
	}

	var obj map[string]flexString
	if err := json.Unmarshal(data, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = string(obj[k])
		}
		*l = out
		return nil
	}

	var one flexString
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = flexList{string(one)}
	return nil
}

var optionPrefixRe = regexp.MustCompile(`^(?:Option\s+[A-D]\s*[:.)]|[A-D][.):])\s*`)

// StripOptionPrefix removes enumerators such as "Option A:", "A.", "A)" and "A:".
func StripOptionPrefix(option string) string {
	return strings.TrimSpace(optionPrefixRe.ReplaceAllString(strings.TrimSpace(option), ""))
}

// letterIndex maps a bare letter A-D (any case) to 0-3.
func letterIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, false
	}
	c := s[0] | 0x20
	if c < 'a' || c > 'd' {
		return 0, false
	}
	return int(c - 'a'), true
}

// parseIndex reads a correct-option reference given as a number, digit string or letter.
func parseIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if idx, ok := letterIndex(s); ok {
		return idx, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

func normalizeType(raw string, hasOptions bool) QuestionType {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.NewReplacer(" ", "_", "-", "_").Replace(t)
	switch t {
	case "multiple_choice", "mcq", "choice":
		return TypeMultipleChoice
	case "text", "short_answer", "open", "open_ended", "free_text":
		return TypeText
	}
	if hasOptions {
		return TypeMultipleChoice
	}
	return TypeText
}

// normalizeQuestion turns a raw question into a valid QuizQuestion. ok is false for
// questions without text.
func normalizeQuestion(raw rawQuestion) (QuizQuestion, bool) {
	q := QuizQuestion{
		Question:    strings.TrimSpace(string(raw.Question)),
		Explanation: strings.TrimSpace(string(raw.Explanation)),
	}
	if q.Question == "" {
		return QuizQuestion{}, false
	}
	if q.Explanation == "" {
		q.Explanation = DefaultExplanation
	}

	options := make([]string, 0, len(raw.Options))
	for _, o := range raw.Options {
		options = append(options, StripOptionPrefix(o))
	}

	q.Type = normalizeType(string(raw.Type), len(options) > 0)
	answer := strings.TrimSpace(string(raw.CorrectAnswer))

	if q.Type == TypeText {
		q.CorrectIndex = -1
		q.CorrectAnswer = answer
		return q, true
	}

	refText := string(raw.CorrectIndex)
	if strings.TrimSpace(refText) == "" {
		refText = string(raw.Correct)
	}
	idx, hasIdx := parseIndex(refText)

	if len(options) != OptionCount {
		options, idx, answer = placeholderOptions(options, idx, hasIdx, answer)
		hasIdx = true
	}

	q.Options = options
	q.CorrectIndex, q.CorrectAnswer = resolveAnswer(options, idx, hasIdx, answer)
	return q, true
}

// resolveAnswer reconciles the index and answer text against options, which has
// exactly OptionCount entries.
func resolveAnswer(options []string, idx int, hasIdx bool, answer string) (int, string) {
	inRange := hasIdx && idx >= 0 && idx < len(options)

	// A bare letter that is not itself an option text refers to a position.
	if li, ok := letterIndex(answer); ok && indexOf(options, answer) < 0 {
		return li, options[li]
	}

	if inRange && options[idx] == answer {
		return idx, answer
	}

	if answer != "" {
		if pos := indexFold(options, answer); pos >= 0 {
			return pos, options[pos]
		}
		if pos := indexFold(options, StripOptionPrefix(answer)); pos >= 0 {
			return pos, options[pos]
		}
	}

	if inRange {
		return idx, options[idx]
	}
	return 0, options[0]
}

// placeholderOptions rebuilds an option list of the wrong length into exactly
// OptionCount entries: the correct answer first when it is known, then the remaining
// given options, then generic placeholders.
func placeholderOptions(given []string, idx int, hasIdx bool, answer string) ([]string, int, string) {
	correct := ""
	li, isLetter := letterIndex(answer)
	isLetter = isLetter && indexOf(given, answer) < 0
	// A letter past the given options names the slot padding fills.
	padSlot := isLetter && li >= len(given)
	switch {
	case isLetter:
		if !padSlot {
			correct = given[li]
		}
	case answer != "":
		correct = StripOptionPrefix(answer)
	}
	if correct == "" && !padSlot && hasIdx && idx >= 0 && idx < len(given) {
		correct = given[idx]
	}

	out := make([]string, 0, OptionCount)
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] || len(out) == OptionCount {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	add(correct)
	for _, o := range given {
		add(o)
	}
	for _, p := range []string{"None of the above", "All of the above", "Not enough information", "Cannot be determined"} {
		add(p)
	}

	if padSlot {
		return out, li, out[li]
	}
	return out, 0, out[0]
}

func indexOf(options []string, s string) int {
	for i, o := range options {
		if o == s {
			return i
		}
	}
	return -1
}

func indexFold(options []string, s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}
	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), s) {
			return i
		}
	}
	return -1
}

// normalizeQuiz validates raw questions and keeps at most n (all when n <= 0).
func normalizeQuiz(raw rawQuiz, n int) ([]QuizQuestion, bool) {
	out := make([]QuizQuestion, 0, len(raw.Questions))
	for _, r := range raw.Questions {
		q, ok := normalizeQuestion(r)
		if !ok {
			continue
		}
		out = append(out, q)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out, len(out) > 0
}

// ParseQuiz decodes backend text into at most n questions. When no stage yields a
// question it synthesizes a fallback quiz from sources for the given mastery level.
func (p *Parser) ParseQuiz(ctx context.Context, text string, sources []string, level, n int) QuizResult {
	logger := contextutil.LoggerOr(ctx, p.logger)

	questions, stage, ok := decode(text, func(r rawQuiz) ([]QuizQuestion, bool) {
		return normalizeQuiz(r, n)
	})
	if ok {
		logger.Debug("quiz parsed", "stage", stage, "questions", len(questions))
		return QuizResult{Questions: questions, Stage: stage}
	}

	questions = FallbackQuiz(sources, level, n)
	logger.Warn("quiz output unusable, using fallback questions",
		"response_len", len(text),
		"questions", len(questions),
	)
	return QuizResult{Questions: questions, Stage: StageFallback}
}
