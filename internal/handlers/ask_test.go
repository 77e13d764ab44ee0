package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnloop/internal/llm"
	"learnloop/internal/rag"
)

func TestSearchHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		results    []rag.ScoredChunk
		err        error
		wantStatus int
		wantTopK   int
		wantCount  int
	}{
		{
			name:   "results",
			method: http.MethodPost,
			body:   `{"query":"what is a cell","top_k":2}`,
			results: []rag.ScoredChunk{
				{DocumentID: "d1", Filename: "bio.txt", ChunkIndex: 0, Text: "cells", Similarity: 0.9},
				{DocumentID: "d1", Filename: "bio.txt", ChunkIndex: 3, Text: "more cells", Similarity: 0.5},
			},
			wantStatus: http.StatusOK,
			wantTopK:   2,
			wantCount:  2,
		},
		{
			name:       "no matches is an empty list",
			method:     http.MethodPost,
			body:       `{"query":"quantum"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "blank query",
			method:     http.MethodPost,
			body:       `{"query":"  "}`,
			err:        rag.ErrEmptyQuery,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "embedding backend down",
			method:     http.MethodPost,
			body:       `{"query":"cells"}`,
			err:        fmt.Errorf("failed to embed query: %w", llm.ErrBackendUnavailable),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "invalid body",
			method:     http.MethodPost,
			body:       `{"query":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockRAGEngine{results: tt.results, err: tt.err}
			handler := NewSearchHandler(engine)

			req := httptest.NewRequest(tt.method, "/api/search", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if engine.lastTopK != tt.wantTopK {
				t.Errorf("engine got topK %d, want %d", engine.lastTopK, tt.wantTopK)
			}
			resp := decodeBody[SearchResponse](t, w)
			if resp.Results == nil {
				t.Error("Results should be an empty list, not null")
			}
			if len(resp.Results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(resp.Results), tt.wantCount)
			}
		})
	}
}

func TestAskHandler(t *testing.T) {
	engine := &mockRAGEngine{response: rag.AskResponse{
		Answer:  "Cells divide by mitosis.",
		Sources: []rag.ScoredChunk{{DocumentID: "d1", Filename: "bio.txt", Text: "mitosis", Similarity: 0.8}},
	}}
	handler := NewAskHandler(engine)

	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewBufferString(`{"question":"How do cells divide?"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if engine.lastQuestion != "How do cells divide?" {
		t.Errorf("engine got question %q", engine.lastQuestion)
	}
	resp := decodeBody[rag.AskResponse](t, w)
	if resp.Answer != "Cells divide by mitosis." || len(resp.Sources) != 1 || resp.Sources[0].Filename != "bio.txt" {
		t.Errorf("response = %+v", resp)
	}
}

func TestAskHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "empty question", err: rag.ErrEmptyQuery, wantStatus: http.StatusBadRequest},
		{name: "backend unavailable", err: fmt.Errorf("failed to generate answer: %w", llm.ErrBackendUnavailable), wantStatus: http.StatusServiceUnavailable},
		{name: "unexpected", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAskHandler(&mockRAGEngine{err: tt.err})
			req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewBufferString(`{"question":"q"}`))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeBody[ErrorResponse](t, w)
			if tt.wantStatus == http.StatusInternalServerError && resp.Error != "Failed to answer question" {
				t.Errorf("internal error message = %q, want the generic message", resp.Error)
			}
		})
	}
}
