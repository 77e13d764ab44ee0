package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"learnloop/internal/extract"
	"learnloop/internal/indexer"
	"learnloop/internal/llm"
	"learnloop/internal/rag"
	"learnloop/internal/service"
	"learnloop/internal/storage"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation error", err: &service.ValidationError{Field: "concept", Message: "required"}, want: http.StatusBadRequest},
		{name: "wrapped validation error", err: fmt.Errorf("quiz: %w", &service.ValidationError{Field: "n"}), want: http.StatusBadRequest},
		{name: "invalid input", err: service.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "empty query", err: rag.ErrEmptyQuery, want: http.StatusBadRequest},
		{name: "unsupported format", err: fmt.Errorf("%w: \".xls\"", extract.ErrUnsupportedFormat), want: http.StatusUnprocessableEntity},
		{name: "empty content", err: indexer.ErrEmptyContent, want: http.StatusUnprocessableEntity},
		{name: "not found", err: fmt.Errorf("document x: %w", storage.ErrNotFound), want: http.StatusNotFound},
		{name: "backend unavailable", err: fmt.Errorf("generate: %w", llm.ErrBackendUnavailable), want: http.StatusServiceUnavailable},
		{name: "storage failure", err: storage.ErrStorageFailure, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
