package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"learnloop/internal/contextutil"
	"learnloop/internal/mastery"
	"learnloop/internal/parser"
	"learnloop/internal/service"
)

// ConceptsHandler serves the concept, quiz and mastery endpoints.
type ConceptsHandler struct {
	learning service.LearningService
	logger   *slog.Logger
}

// NewConceptsHandler creates a new ConceptsHandler.
func NewConceptsHandler(learning service.LearningService) *ConceptsHandler {
	return &ConceptsHandler{
		learning: learning,
		logger:   slog.Default(),
	}
}

// ExtractRequest asks for the concepts of a stored document.
type ExtractRequest struct {
	DocumentID string `json:"document_id"`
}

// QuizRequest represents the HTTP request payload for quiz generation.
type QuizRequest struct {
	Concept      string `json:"concept"`
	MasteryLevel int    `json:"mastery_level"`
	NumQuestions int    `json:"num_questions"`
}

// QuizResponse is a generated quiz.
type QuizResponse struct {
	Concept      string                `json:"concept"`
	MasteryLevel int                   `json:"mastery_level"`
	Questions    []parser.QuizQuestion `json:"questions"`
	Stage        parser.Stage          `json:"stage"`
}

// GradeRequest carries a finished quiz for grading.
type GradeRequest struct {
	Concept   string                `json:"concept"`
	Questions []parser.QuizQuestion `json:"questions"`
	Answers   []service.Answer      `json:"answers"`
}

// MasteryRequest records a session score against a concept id or main label.
type MasteryRequest struct {
	Concept string   `json:"concept"`
	Score   *float64 `json:"score"`
}

// List returns the stored concepts grouped by main label.
func (h *ConceptsHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.learning.ListConcepts(r.Context())
	if err != nil {
		handleError(r.Context(), w, err, "Failed to list concepts")
		return
	}
	if groups == nil {
		groups = []service.ConceptGroup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"concepts": groups})
}

// Extract extracts and stores the concepts of one document.
func (h *ConceptsHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExtractRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err, "Invalid request body")
		return
	}

	res, err := h.learning.ExtractAndStoreConcepts(ctx, req.DocumentID)
	if err != nil {
		handleError(ctx, w, err, "Failed to extract concepts")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Quiz generates a quiz about a concept.
func (h *ConceptsHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QuizRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err, "Invalid request body")
		return
	}

	quiz, err := h.learning.GenerateQuiz(ctx, service.QuizRequest{
		Concept:      req.Concept,
		Level:        mastery.Level(req.MasteryLevel),
		NumQuestions: req.NumQuestions,
	})
	if err != nil {
		handleError(ctx, w, err, "Failed to generate quiz")
		return
	}

	writeJSON(w, http.StatusOK, QuizResponse{
		Concept:      req.Concept,
		MasteryLevel: req.MasteryLevel,
		Questions:    quiz.Questions,
		Stage:        quiz.Stage,
	})
}

// Grade grades a finished quiz and records the score.
func (h *ConceptsHandler) Grade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GradeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err, "Invalid request body")
		return
	}

	resp, err := h.learning.GradeQuiz(ctx, service.GradeRequest{
		Concept:   req.Concept,
		Questions: req.Questions,
		Answers:   req.Answers,
	})
	if err != nil {
		handleError(ctx, w, err, "Failed to grade quiz")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecordMastery applies one session score to a concept.
func (h *ConceptsHandler) RecordMastery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerOr(ctx, h.logger)

	var req MasteryRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err, "Invalid request body")
		return
	}
	if req.Score == nil {
		handleError(ctx, w, &service.ValidationError{Field: "score", Message: "score is required"}, "Invalid request body")
		return
	}

	res, err := h.learning.RecordQuizResult(ctx, req.Concept, *req.Score)
	if err != nil {
		handleError(ctx, w, err, "Failed to record mastery")
		return
	}
	if !res.Found {
		logger.WarnContext(ctx, "mastery update for unknown concept", "concept", req.Concept)
		writeError(w, http.StatusNotFound, fmt.Sprintf("Concept %q not found", req.Concept))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
