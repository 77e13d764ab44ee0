package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"learnloop/internal/contextutil"
	"learnloop/internal/storage"
)

// BlobStore implements VectorStore over the per-document vector blobs kept in SQLite.
// Scores are dot products, which equal cosine similarity for normalized vectors.
type BlobStore struct {
	blobs  storage.VectorBlobStore
	logger *slog.Logger
}

// NewBlobStore creates a BlobStore reading from blobs.
func NewBlobStore(blobs storage.VectorBlobStore) *BlobStore {
	return &BlobStore{blobs: blobs, logger: slog.Default()}
}

// Upsert replaces the vectors of a document.
func (s *BlobStore) Upsert(ctx context.Context, documentID string, vectors [][]float32) error {
	if err := s.blobs.Put(ctx, documentID, vectors); err != nil {
		return fmt.Errorf("failed to store vectors: %w", err)
	}
	return nil
}

// Search scores every chunk of the document against query.
func (s *BlobStore) Search(ctx context.Context, documentID string, query []float32, k int, minScore float32) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	vectors, err := s.blobs.Get(ctx, documentID)
	if errors.Is(err, storage.ErrNotFound) {
		return []SearchResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	results := make([]SearchResult, 0, len(vectors))
	for i, v := range vectors {
		score, err := Dot(query, v)
		if err != nil {
			return nil, fmt.Errorf("document %s chunk %d: %w", documentID, i, err)
		}
		if score > minScore {
			results = append(results, SearchResult{ChunkIndex: i, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	contextutil.LoggerOr(ctx, s.logger).DebugContext(ctx, "blob search completed",
		"document_id", documentID, "chunks", len(vectors), "results", len(results))
	return results, nil
}

// Delete removes every vector of a document.
func (s *BlobStore) Delete(ctx context.Context, documentID string) error {
	if err := s.blobs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	return nil
}

// Dot returns the dot product of a and b.
func Dot(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: query has %d, vector has %d", len(a), len(b))
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}
