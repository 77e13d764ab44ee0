package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_learning_service.go -package=mocks learnloop/internal/service LearningService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"learnloop/internal/contextutil"
	"learnloop/internal/llm"
	"learnloop/internal/mastery"
	"learnloop/internal/parser"
	"learnloop/internal/storage"
)

const (
	// MaxExtractionChunks is the number of leading chunks sent for concept extraction.
	MaxExtractionChunks = 15
	// DefaultQuizQuestions is used when a quiz request asks for zero questions.
	DefaultQuizQuestions = 3
	// MaxQuizQuestions caps the questions per quiz.
	MaxQuizQuestions = 10
)

const conceptSystemPrompt = `You are an expert at analyzing educational content and extracting key concepts.
Your task is to identify the main concepts from the provided text.

IMPORTANT: You must respond with ONLY valid JSON in this exact format:
{
    "concepts": [
        {
            "main": "Concept Name",
            "sub": "Concept Name",
            "description": "Brief description of the concept"
        }
    ]
}

Focus on identifying the key topics, themes, or subjects from the document.
Each concept should represent a distinct topic or theme.

Do not include any other text, explanations, or formatting. Only return the JSON.`

// quizLevelHints steers question difficulty by mastery level.
var quizLevelHints = map[mastery.Level]string{
	mastery.NotStarted:    "Ask basic recall questions about definitions and key facts.",
	mastery.Recall:        "Ask basic recall questions about definitions and key facts.",
	mastery.Understanding: "Ask questions that check understanding of how and why the concept works.",
	mastery.Apply:         "Ask questions that require applying the concept to a new situation.",
}

// LearningService extracts concepts, generates and grades quizzes, and tracks mastery.
type LearningService interface {
	// ExtractConcepts asks the generation backend for the concepts in chunks. It never
	// fails: unusable output or an unavailable backend yields fallback concepts.
	ExtractConcepts(ctx context.Context, chunks []string) parser.ConceptResult
	// ExtractAndStoreConcepts extracts the concepts of a stored document and saves the new ones.
	ExtractAndStoreConcepts(ctx context.Context, documentID string) (ExtractResult, error)
	// GenerateQuiz builds a quiz about a concept at a mastery level.
	GenerateQuiz(ctx context.Context, req QuizRequest) (parser.QuizResult, error)
	// RecordQuizResult advances every concept sharing ref's main label by one session score.
	RecordQuizResult(ctx context.Context, ref string, score float64) (MasteryResult, error)
	// GradeQuiz grades a session and records the score against the quiz concept.
	GradeQuiz(ctx context.Context, req GradeRequest) (GradeResponse, error)
	// ListConcepts returns the stored concepts grouped by main label.
	ListConcepts(ctx context.Context) ([]ConceptGroup, error)
}

// ExtractResult reports a concept extraction for one document.
type ExtractResult struct {
	DocumentID string           `json:"document_id"`
	Concepts   []parser.Concept `json:"concepts"`
	Inserted   int              `json:"inserted"`
	Stage      parser.Stage     `json:"stage"`
}

// QuizRequest asks for a quiz about Concept.
type QuizRequest struct {
	Concept      string
	Level        mastery.Level
	NumQuestions int
}

// MasteryResult is the outcome of recording a quiz score. Found is false when no
// concept matched, in which case nothing was changed.
type MasteryResult struct {
	Found    bool          `json:"found"`
	Ref      string        `json:"ref"`
	Main     string        `json:"main,omitempty"`
	Previous mastery.State `json:"previous"`
	State    mastery.State `json:"state"`
	Updated  int           `json:"updated"`
}

// GradeRequest carries a finished quiz session.
type GradeRequest struct {
	Concept   string
	Questions []parser.QuizQuestion
	Answers   []Answer
}

// GradeResponse is a graded session and, when a score was recorded, the mastery change.
type GradeResponse struct {
	Grade   SessionGrade   `json:"grade"`
	Mastery *MasteryResult `json:"mastery,omitempty"`
}

// ConceptGroup is every concept sharing one main label.
type ConceptGroup struct {
	Main        string        `json:"main"`
	State       mastery.State `json:"state"`
	LevelName   string        `json:"level_name"`
	Subconcepts []ConceptView `json:"subconcepts"`
}

// ConceptView is one stored concept.
type ConceptView struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id,omitempty"`
	Sub         string `json:"sub"`
	Description string `json:"description"`
}

// learningService implements LearningService.
type learningService struct {
	generator llm.Generator
	parser    *parser.Parser
	docs      storage.DocumentStore
	chunks    storage.ChunkStore
	concepts  storage.ConceptStore
	logger    *slog.Logger
}

// NewLearningService creates a new LearningService.
func NewLearningService(
	generator llm.Generator,
	p *parser.Parser,
	docs storage.DocumentStore,
	chunks storage.ChunkStore,
	concepts storage.ConceptStore,
) LearningService {
	return &learningService{
		generator: generator,
		parser:    p,
		docs:      docs,
		chunks:    chunks,
		concepts:  concepts,
		logger:    slog.Default(),
	}
}

func (s *learningService) ExtractConcepts(ctx context.Context, chunks []string) parser.ConceptResult {
	logger := contextutil.LoggerOr(ctx, s.logger)

	if len(chunks) == 0 {
		return parser.ConceptResult{Concepts: []parser.Concept{}, Stage: parser.StageFallback}
	}
	if len(chunks) > MaxExtractionChunks {
		chunks = chunks[:MaxExtractionChunks]
	}

	content := strings.Join(chunks, "\n\n")
	prompt := fmt.Sprintf("Here is the document content to analyze:\n\n%s\n\n"+
		"Extract the key concepts from this content. Respond with ONLY the JSON format as specified in the system prompt.", content)

	logger.InfoContext(ctx, "extracting concepts", "chunks", len(chunks), "content_length", len(content))
	response, err := s.generator.Generate(ctx, prompt, conceptSystemPrompt)
	if err != nil {
		logger.ErrorContext(ctx, "concept extraction backend failed, using fallback", "error", err)
		return parser.ConceptResult{Concepts: parser.FallbackConcepts(chunks), Stage: parser.StageFallback}
	}

	return s.parser.ParseConcepts(ctx, response, chunks)
}

func (s *learningService) ExtractAndStoreConcepts(ctx context.Context, documentID string) (ExtractResult, error) {
	logger := contextutil.LoggerOr(ctx, s.logger)

	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return ExtractResult{}, invalid("document_id", "cannot be empty")
	}

	if _, err := s.docs.Get(ctx, documentID); err != nil {
		return ExtractResult{}, err
	}
	records, err := s.chunks.ListByDocument(ctx, documentID)
	if err != nil {
		return ExtractResult{}, WrapError(err, "failed to load chunks")
	}

	texts := make([]string, len(records))
	for i, c := range records {
		texts[i] = c.Text
	}

	result := s.ExtractConcepts(ctx, texts)

	concepts := make([]*storage.ConceptRecord, len(result.Concepts))
	for i, c := range result.Concepts {
		concepts[i] = &storage.ConceptRecord{
			DocumentID:  documentID,
			Main:        c.Main,
			Sub:         c.Sub,
			Description: c.Description,
		}
	}
	inserted, err := s.concepts.InsertMany(ctx, concepts)
	if err != nil {
		return ExtractResult{}, WrapError(err, "failed to store concepts")
	}

	logger.InfoContext(ctx, "concepts extracted",
		"document_id", documentID,
		"stage", result.Stage,
		"concepts", len(result.Concepts),
		"inserted", inserted,
	)
	return ExtractResult{
		DocumentID: documentID,
		Concepts:   result.Concepts,
		Inserted:   inserted,
		Stage:      result.Stage,
	}, nil
}

func (s *learningService) GenerateQuiz(ctx context.Context, req QuizRequest) (parser.QuizResult, error) {
	logger := contextutil.LoggerOr(ctx, s.logger)

	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		return parser.QuizResult{}, invalid("concept", "cannot be empty")
	}
	if !req.Level.Valid() {
		return parser.QuizResult{}, invalid("mastery_level", "must be between %d and %d", mastery.NotStarted, mastery.Apply)
	}
	n := req.NumQuestions
	if n == 0 {
		n = DefaultQuizQuestions
	}
	if n < 0 || n > MaxQuizQuestions {
		return parser.QuizResult{}, invalid("num_questions", "must be between 1 and %d", MaxQuizQuestions)
	}

	sources := s.quizSources(ctx, concept)
	level := int(req.Level)

	logger.InfoContext(ctx, "generating quiz", "concept", concept, "level", req.Level.String(), "questions", n)
	response, err := s.generator.Generate(ctx, "Concept: "+concept, quizSystemPrompt(concept, req.Level, n))
	if err != nil {
		logger.ErrorContext(ctx, "quiz backend failed, using fallback", "error", err)
		return parser.QuizResult{Questions: parser.FallbackQuiz(sources, level, n), Stage: parser.StageFallback}, nil
	}

	return s.parser.ParseQuiz(ctx, response, sources, level, n), nil
}

// quizSources collects the texts fallback questions are built from: the stored
// descriptions of the concept, then the concept name itself.
func (s *learningService) quizSources(ctx context.Context, concept string) []string {
	var sources []string
	stored, err := s.concepts.List(ctx)
	if err != nil {
		contextutil.LoggerOr(ctx, s.logger).WarnContext(ctx, "failed to load concept descriptions", "error", err)
	}
	for _, c := range stored {
		if strings.EqualFold(c.Main, concept) && c.Description != "" {
			sources = append(sources, c.Description)
		}
	}
	return append(sources, "Concept: "+concept)
}

func quizSystemPrompt(concept string, level mastery.Level, n int) string {
	return fmt.Sprintf(`You are an expert educator. Your job is to generate %d multiple choice quiz questions about the concept: "%s".
%s

IMPORTANT INSTRUCTIONS:
- Use your own knowledge of the concept.
- ALWAYS output ONLY valid JSON in the exact format below. Do NOT include any extra text, markdown, or explanations.
- The "options" array must be a list of 4 answer texts only (no prefixes, no letters, no numbers).
- The "correct_answer" field is the FULL TEXT of the correct option (must match exactly one of the options).
- The "explanation" field is a brief explanation of the correct answer.

EXAMPLE FORMAT (output ONLY this JSON, nothing else):

{
  "questions": [
    {
      "question": "What is the capital of France?",
      "type": "multiple_choice",
      "options": ["Paris", "London", "Berlin", "Madrid"],
      "correct": 0,
      "correct_answer": "Paris",
      "explanation": "Paris is the capital of France."
    }
  ]
}`, n, concept, quizLevelHints[level])
}

func (s *learningService) RecordQuizResult(ctx context.Context, ref string, score float64) (MasteryResult, error) {
	logger := contextutil.LoggerOr(ctx, s.logger)

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return MasteryResult{}, invalid("concept", "cannot be empty")
	}
	if score < 0 || score > 1 {
		return MasteryResult{}, invalid("score", "must be between 0 and 1")
	}

	var previous mastery.State
	updated, err := s.concepts.UpdateMastery(ctx, ref, func(level, progress int) (int, int) {
		previous = mastery.State{Level: mastery.Level(level), Progress: progress}
		after := mastery.Advance(previous, score)
		return int(after.Level), after.Progress
	})
	if errors.Is(err, storage.ErrNotFound) {
		logger.InfoContext(ctx, "no concept matches quiz result, nothing recorded", "ref", ref)
		return MasteryResult{Found: false, Ref: ref}, nil
	}
	if err != nil {
		return MasteryResult{}, WrapError(err, "failed to record quiz result")
	}

	first := updated[0]
	res := MasteryResult{
		Found:    true,
		Ref:      ref,
		Main:     first.Main,
		Previous: previous,
		State:    mastery.State{Level: mastery.Level(first.MasteryLevel), Progress: first.Progress},
		Updated:  len(updated),
	}

	logger.InfoContext(ctx, "mastery updated",
		"concept", res.Main,
		"score", score,
		"from_level", res.Previous.Level.String(),
		"to_level", res.State.Level.String(),
		"progress", res.State.Progress,
		"concepts", res.Updated,
	)
	return res, nil
}

func (s *learningService) GradeQuiz(ctx context.Context, req GradeRequest) (GradeResponse, error) {
	if len(req.Questions) == 0 {
		return GradeResponse{}, invalid("questions", "cannot be empty")
	}
	if len(req.Answers) > len(req.Questions) {
		return GradeResponse{}, invalid("answers", "more answers than questions")
	}

	grade := GradeSession(req.Questions, req.Answers)
	resp := GradeResponse{Grade: grade}

	if grade.Answered == 0 || strings.TrimSpace(req.Concept) == "" {
		return resp, nil
	}
	res, err := s.RecordQuizResult(ctx, req.Concept, grade.Score)
	if err != nil {
		return GradeResponse{}, err
	}
	resp.Mastery = &res
	return resp, nil
}

func (s *learningService) ListConcepts(ctx context.Context) ([]ConceptGroup, error) {
	records, err := s.concepts.List(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list concepts")
	}

	groups := []ConceptGroup{}
	index := make(map[string]int)
	for _, c := range records {
		state := mastery.State{Level: mastery.Level(c.MasteryLevel), Progress: c.Progress}
		i, ok := index[c.Main]
		if !ok {
			i = len(groups)
			index[c.Main] = i
			groups = append(groups, ConceptGroup{Main: c.Main, State: state})
		}
		g := &groups[i]
		if ahead(state, g.State) {
			g.State = state
		}
		g.Subconcepts = append(g.Subconcepts, ConceptView{
			ID:          c.ID,
			DocumentID:  c.DocumentID,
			Sub:         c.Sub,
			Description: c.Description,
		})
	}
	for i := range groups {
		groups[i].LevelName = groups[i].State.Level.String()
	}
	return groups, nil
}

// ahead reports whether a is further along than b.
func ahead(a, b mastery.State) bool {
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	return a.Progress > b.Progress
}
