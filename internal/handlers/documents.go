package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"learnloop/internal/contextutil"
	"learnloop/internal/indexer"
	"learnloop/internal/service"
	"learnloop/internal/storage"
)

const (
	// maxUploadMemory is the multipart memory limit; larger parts spill to disk.
	maxUploadMemory = 32 << 20
	// uploadField is the multipart field carrying the files.
	uploadField = "files"
)

// DocumentIndexer is the corpus surface the document endpoints use.
type DocumentIndexer interface {
	Ingest(ctx context.Context, content []byte, filename string) (indexer.IngestResult, error)
	ListDocuments(ctx context.Context) ([]*storage.DocumentRecord, error)
	GetDocumentChunks(ctx context.Context, id string) ([]*storage.ChunkRecord, error)
	Delete(ctx context.Context, id string) (indexer.DeleteResult, error)
	Stats(ctx context.Context) (*indexer.CorpusStats, error)
}

// DocumentsHandler serves the document endpoints.
type DocumentsHandler struct {
	indexer     DocumentIndexer
	learning    service.LearningService
	autoExtract bool
	logger      *slog.Logger
}

// NewDocumentsHandler creates a new DocumentsHandler. When autoExtract is set, newly
// processed uploads have their concepts extracted before the response is written.
func NewDocumentsHandler(idx DocumentIndexer, learning service.LearningService, autoExtract bool) *DocumentsHandler {
	return &DocumentsHandler{
		indexer:     idx,
		learning:    learning,
		autoExtract: autoExtract && learning != nil,
		logger:      slog.Default(),
	}
}

// DocumentResponse is a stored document.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	FileSize    int64     `json:"file_size"`
	ChunkCount  int       `json:"chunk_count"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ChunkResponse is one chunk of a document.
type ChunkResponse struct {
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

// UploadResult is the outcome for one uploaded file.
type UploadResult struct {
	indexer.IngestResult
	ConceptsExtracted int    `json:"concepts_extracted,omitempty"`
	ConceptError      string `json:"concept_error,omitempty"`
}

// UploadResponse lists the per-file upload outcomes.
type UploadResponse struct {
	Results []UploadResult `json:"results"`
}

func newDocumentResponse(doc *storage.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentHash: doc.ContentHash,
		FileSize:    doc.FileSize,
		ChunkCount:  doc.ChunkCount,
		Status:      doc.Status,
		UploadedAt:  doc.UploadedAt,
	}
}

// Upload ingests every file in the multipart "files" field. A failing file does not
// fail the request; its result carries status "error".
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerOr(ctx, h.logger)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("No files provided in field %q", uploadField))
		return
	}

	resp := UploadResponse{Results: make([]UploadResult, 0, len(files))}
	for _, fh := range files {
		resp.Results = append(resp.Results, h.uploadOne(ctx, fh))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *DocumentsHandler) uploadOne(ctx context.Context, fh *multipart.FileHeader) UploadResult {
	logger := contextutil.LoggerOr(ctx, h.logger)

	content, err := readPart(fh)
	if err != nil {
		logger.WarnContext(ctx, "failed to read upload", "filename", fh.Filename, "error", err)
		return UploadResult{IngestResult: indexer.IngestResult{
			Status:   storage.StatusError,
			Filename: fh.Filename,
			Error:    err.Error(),
		}}
	}

	res, err := h.indexer.Ingest(ctx, content, fh.Filename)
	if err != nil {
		res.Status = storage.StatusError
		res.Error = err.Error()
		return UploadResult{IngestResult: res}
	}

	out := UploadResult{IngestResult: res}
	if h.autoExtract && res.Status == storage.StatusProcessed {
		extracted, err := h.learning.ExtractAndStoreConcepts(ctx, res.DocumentID)
		if err != nil {
			logger.WarnContext(ctx, "concept extraction failed", "document_id", res.DocumentID, "error", err)
			out.ConceptError = err.Error()
		} else {
			out.ConceptsExtracted = extracted.Inserted
		}
	}
	return out
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return content, nil
}

// List returns every document, newest first.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.indexer.ListDocuments(r.Context())
	if err != nil {
		handleError(r.Context(), w, err, "Failed to list documents")
		return
	}

	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = newDocumentResponse(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// Chunks returns a document's chunks in order.
func (h *DocumentsHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	chunks, err := h.indexer.GetDocumentChunks(r.Context(), id)
	if err != nil {
		handleError(r.Context(), w, err, "Failed to load chunks")
		return
	}

	out := make([]ChunkResponse, len(chunks))
	for i, c := range chunks {
		out[i] = ChunkResponse{ChunkIndex: c.ChunkIndex, Text: c.Text}
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": id, "chunks": out})
}

// Delete removes a document and everything derived from it.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.indexer.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(r.Context(), w, err, "Failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats returns corpus statistics.
func (h *DocumentsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.indexer.Stats(r.Context())
	if err != nil {
		handleError(r.Context(), w, err, "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
