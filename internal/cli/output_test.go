package cli

import (
	"strings"
	"testing"

	"learnloop/internal/parser"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{name: "short", text: "hello world", n: 20, want: "hello world"},
		{name: "whitespace collapsed", text: "hello\n\n  world", n: 20, want: "hello world"},
		{name: "truncated", text: "abcdefghij", n: 4, want: "abcd..."},
		{name: "runes", text: "日本語テキスト", n: 3, want: "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preview(tt.text, tt.n); got != tt.want {
				t.Errorf("preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "chunk"); got != "1 chunk" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(0, "chunk"); got != "0 chunks" {
		t.Errorf("plural(0) = %q", got)
	}
}

func TestParseAnswer(t *testing.T) {
	mc := parser.QuizQuestion{Question: "q", Type: parser.TypeMultipleChoice, Options: []string{"a", "b", "c", "d"}}
	text := parser.QuizQuestion{Question: "q", Type: parser.TypeText, CorrectIndex: -1}

	tests := []struct {
		name      string
		q         parser.QuizQuestion
		line      string
		wantIndex int
		wantText  string
	}{
		{name: "letter", q: mc, line: "b", wantIndex: 1},
		{name: "upper letter", q: mc, line: " D ", wantIndex: 3},
		{name: "letter out of range", q: mc, line: "e", wantIndex: -1, wantText: "e"},
		{name: "option text", q: mc, line: "Paris", wantIndex: -1, wantText: "Paris"},
		{name: "blank skips", q: mc, line: "  ", wantIndex: -1},
		{name: "text question letter", q: text, line: "a", wantIndex: -1, wantText: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAnswer(tt.q, tt.line)
			gotIndex := -1
			if got.Index != nil {
				gotIndex = *got.Index
			}
			if gotIndex != tt.wantIndex || got.Text != tt.wantText {
				t.Errorf("parseAnswer(%q) = index %d text %q, want index %d text %q", tt.line, gotIndex, got.Text, tt.wantIndex, tt.wantText)
			}
		})
	}
}

func TestReadAnswers(t *testing.T) {
	questions := []parser.QuizQuestion{
		{Question: "one", Type: parser.TypeMultipleChoice, Options: []string{"a", "b", "c", "d"}},
		{Question: "two", Type: parser.TypeText, CorrectIndex: -1},
		{Question: "three", Type: parser.TypeMultipleChoice, Options: []string{"a", "b", "c", "d"}},
	}

	answers, err := readAnswers(strings.NewReader("c\nphotosynthesis\n"), questions)
	if err != nil {
		t.Fatalf("readAnswers() error = %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("readAnswers() = %d answers, want 2", len(answers))
	}
	if answers[0].Index == nil || *answers[0].Index != 2 {
		t.Errorf("answers[0] = %+v", answers[0])
	}
	if answers[1].Text != "photosynthesis" {
		t.Errorf("answers[1] = %+v", answers[1])
	}

	answers, err = readAnswers(strings.NewReader("a\nb\nc\nd\ne\n"), questions)
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != len(questions) {
		t.Errorf("extra input lines should be ignored, got %d answers", len(answers))
	}
}
