package parser

import (
	"fmt"
	"strings"
)

const (
	fallbackExcerptRunes     = 200
	fallbackConceptChunks    = 8
	fallbackConceptWords     = 6
	fallbackConceptNameRunes = 50
	fallbackDescriptionRunes = 100
)

type quizTemplate struct {
	question    string
	options     [OptionCount]string
	explanation string
}

var (
	recallTemplate = quizTemplate{
		question: "What is the main topic discussed in this text?",
		options: [OptionCount]string{
			"The main topic from the text",
			"A related but different topic",
			"A completely unrelated topic",
			"None of the above",
		},
		explanation: "This tests basic recall of the main topic from the text.",
	}
	understandingTemplate = quizTemplate{
		question: "What is the primary purpose of this text?",
		options: [OptionCount]string{
			"To inform about the topic",
			"To entertain the reader",
			"To persuade the reader",
			"To confuse the reader",
		},
		explanation: "This tests comprehension of the text's purpose.",
	}
	applyTemplate = quizTemplate{
		question: "Which of the following best demonstrates application of the concepts from this text?",
		options: [OptionCount]string{
			"A practical example using the concepts",
			"A summary of the concepts",
			"A criticism of the concepts",
			"A completely unrelated scenario",
		},
		explanation: "This tests application and synthesis of knowledge.",
	}
)

func templateForLevel(level int) quizTemplate {
	switch {
	case level >= 3:
		return applyTemplate
	case level == 2:
		return understandingTemplate
	default:
		return recallTemplate
	}
}

// FallbackQuiz builds one question per source text for the template of level, with the
// correct option first. It returns at least one and at most n questions (n <= 0 means 1).
func FallbackQuiz(sources []string, level, n int) []QuizQuestion {
	if n <= 0 {
		n = 1
	}
	tmpl := templateForLevel(level)

	count := min(len(sources), n)
	if count == 0 {
		count = 1
	}

	questions := make([]QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		source := ""
		if i < len(sources) {
			source = strings.TrimSpace(sources[i])
		}

		question := tmpl.question
		if source != "" {
			question = fmt.Sprintf("%s\n\n\"%s\"", tmpl.question, truncateRunes(source, fallbackExcerptRunes))
		}

		questions = append(questions, QuizQuestion{
			Question:      question,
			Type:          TypeMultipleChoice,
			Options:       append([]string(nil), tmpl.options[:]...),
			CorrectIndex:  0,
			CorrectAnswer: tmpl.options[0],
			Explanation:   tmpl.explanation,
		})
	}
	return questions
}

// FallbackConcepts derives a concept from the first words of each of the first chunks.
// No chunks yields an empty, non-nil list.
func FallbackConcepts(chunks []string) []Concept {
	limit := min(len(chunks), fallbackConceptChunks)
	concepts := make([]Concept, 0, limit)

	for i := 0; i < limit; i++ {
		words := strings.Fields(chunks[i])
		if len(words) > fallbackConceptWords {
			words = words[:fallbackConceptWords]
		}

		name := strings.Join(words, " ")
		if name == "" {
			name = fmt.Sprintf("Topic %d", i+1)
		}
		name = truncateRunes(name, fallbackConceptNameRunes)

		excerpt := strings.Join(strings.Fields(chunks[i]), " ")
		concepts = append(concepts, Concept{
			Main:        name,
			Sub:         name,
			Description: "Key topic from document: " + truncateRunes(excerpt, fallbackDescriptionRunes),
		})
	}
	return concepts
}
