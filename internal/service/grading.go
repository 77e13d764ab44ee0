package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"learnloop/internal/mastery"
	"learnloop/internal/parser"
)

// minFreeTextRunes is the length a free text answer must exceed when the question
// has no reference answer.
const minFreeTextRunes = 10

var gradingStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// Answer is a learner's response to one question. Multiple choice answers set Index;
// free text answers set Text. A zero Answer means the question was skipped.
type Answer struct {
	Index *int   `json:"index,omitempty"`
	Text  string `json:"text,omitempty"`
}

// QuestionGrade is the outcome for one question.
type QuestionGrade struct {
	Answered      bool   `json:"answered"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// SessionGrade is the outcome of a whole quiz session. Score counts answered
// questions only.
type SessionGrade struct {
	Correct   int             `json:"correct"`
	Answered  int             `json:"answered"`
	Total     int             `json:"total"`
	Score     float64         `json:"score"`
	Questions []QuestionGrade `json:"questions"`
}

// GradeSession grades answers against questions position by position. Missing
// trailing answers count as skipped. The session score is computed once, at the end.
func GradeSession(questions []parser.QuizQuestion, answers []Answer) SessionGrade {
	grade := SessionGrade{
		Total:     len(questions),
		Questions: make([]QuestionGrade, len(questions)),
	}

	for i, q := range questions {
		var a Answer
		if i < len(answers) {
			a = answers[i]
		}
		answered, correct := gradeQuestion(q, a)
		grade.Questions[i] = QuestionGrade{
			Answered:      answered,
			Correct:       correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if answered {
			grade.Answered++
		}
		if correct {
			grade.Correct++
		}
	}

	grade.Score = mastery.Score(grade.Correct, grade.Answered)
	return grade
}

func gradeQuestion(q parser.QuizQuestion, a Answer) (answered, correct bool) {
	text := strings.TrimSpace(a.Text)

	if q.Type == parser.TypeMultipleChoice {
		if a.Index != nil {
			return true, *a.Index == q.CorrectIndex
		}
		if text == "" {
			return false, false
		}
		return true, strings.EqualFold(parser.StripOptionPrefix(text), q.CorrectAnswer)
	}

	if text == "" {
		return false, false
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return true, utf8.RuneCountInString(text) > minFreeTextRunes
	}
	return true, keywordOverlap(q.CorrectAnswer, text)
}

// keywordOverlap reports whether answer shares a keyword with expected. Stopwords are
// ignored unless expected consists of nothing else.
func keywordOverlap(expected, answer string) bool {
	expectedTokens := tokenize(expected)
	if filtered := filterStopwords(expectedTokens); len(filtered) > 0 {
		expectedTokens = filtered
	}

	answerSet := make(map[string]struct{})
	for _, token := range tokenize(answer) {
		answerSet[token] = struct{}{}
	}
	for _, token := range expectedTokens {
		if _, ok := answerSet[token]; ok {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func filterStopwords(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := gradingStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
