package handlers

import (
	"net/http"

	"learnloop/internal/contextutil"
	"learnloop/internal/rag"
)

// AskHandler handles HTTP requests for grounded questions.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{ragEngine: ragEngine}
}

// AskRequest represents the HTTP request payload for questions.
type AskRequest struct {
	Question string `json:"question"`
}

// ServeHTTP answers a question from the best matching chunks.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err, "Invalid request body")
		return
	}

	resp, err := h.ragEngine.Ask(ctx, req.Question)
	if err != nil {
		handleError(ctx, w, err, "Failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// SearchHandler handles HTTP requests for similarity search.
type SearchHandler struct {
	ragEngine rag.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(ragEngine rag.Engine) *SearchHandler {
	return &SearchHandler{ragEngine: ragEngine}
}

// SearchRequest represents the HTTP request payload for searches. A zero TopK uses
// the default; values above the maximum are capped.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResponse lists the matched chunks, best first.
type SearchResponse struct {
	Query   string            `json:"query"`
	Results []rag.ScoredChunk `json:"results"`
}

// ServeHTTP returns the chunks most similar to the query.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err, "Invalid request body")
		return
	}

	results, err := h.ragEngine.Search(ctx, req.Query, req.TopK)
	if err != nil {
		handleError(ctx, w, err, "Failed to search documents")
		return
	}
	if results == nil {
		results = []rag.ScoredChunk{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: req.Query, Results: results})
}
