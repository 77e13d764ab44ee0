package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"learnloop/internal/contextutil"
)

// IndexSyncer rebuilds the vector index from the stored vectors.
type IndexSyncer interface {
	SyncIndex(ctx context.Context) (int, error)
}

// IndexHandler handles HTTP requests for rebuilding the vector index.
type IndexHandler struct {
	syncer IndexSyncer
	logger *slog.Logger
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(syncer IndexSyncer) *IndexHandler {
	return &IndexHandler{
		syncer: syncer,
		logger: slog.Default(),
	}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// ServeHTTP pushes every stored vector to the configured index. With the SQLite
// index there is nothing to push and zero documents are reported.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerOr(ctx, h.logger)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger.InfoContext(ctx, "re-indexing triggered via API")

	n, err := h.syncer.SyncIndex(ctx)
	if err != nil {
		handleError(ctx, w, err, "Failed to rebuild index")
		return
	}

	logger.InfoContext(ctx, "re-indexing completed", "documents", n)
	writeJSON(w, http.StatusOK, IndexResponse{Status: "completed", Documents: n})
}
