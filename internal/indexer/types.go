package indexer

import (
	"context"
	"errors"
)

// ErrEmptyContent is returned when a file extracts to blank text.
var ErrEmptyContent = errors.New("empty content")

// TextExtractor turns a named file's bytes into text.
type TextExtractor interface {
	Supports(filename string) bool
	Extract(ctx context.Context, filename string, content []byte) (string, error)
}

// IngestResult reports the outcome of ingesting one file.
type IngestResult struct {
	Status     string `json:"status"`
	DocumentID string `json:"document_id,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	Filename   string `json:"filename"`
	Error      string `json:"error,omitempty"`
}

// DeleteResult reports a document deletion. Warnings lists cleanup steps that failed
// after the rows were removed.
type DeleteResult struct {
	DocumentID string   `json:"document_id"`
	Filename   string   `json:"filename"`
	Warnings   []string `json:"warnings,omitempty"`
}
