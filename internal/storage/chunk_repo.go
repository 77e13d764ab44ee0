package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks learnloop/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
// Chunks are written together with their document by DocumentStore.Create.
type ChunkStore interface {
	// ListByDocument returns all chunks of a document ordered by chunk_index.
	// Returns an empty slice if no chunks exist (not an error).
	ListByDocument(ctx context.Context, documentID string) ([]*ChunkRecord, error)
	// Get gets a single chunk. Returns ErrNotFound if not found.
	Get(ctx context.Context, documentID string, chunkIndex int) (*ChunkRecord, error)
	// TextLengths returns the rune length of every stored chunk.
	TextLengths(ctx context.Context) ([]int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// ListByDocument returns all chunks of a document ordered by chunk_index.
func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT document_id, chunk_index, text FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query chunks: %v", ErrStorageFailure, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []*ChunkRecord{}
	for rows.Next() {
		var chunk ChunkRecord
		if err := rows.Scan(&chunk.DocumentID, &chunk.ChunkIndex, &chunk.Text); err != nil {
			return nil, fmt.Errorf("%w: failed to scan chunk: %v", ErrStorageFailure, err)
		}
		chunks = append(chunks, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", ErrStorageFailure, err)
	}

	return chunks, nil
}

// Get gets a single chunk. Returns ErrNotFound if not found.
func (r *ChunkRepo) Get(ctx context.Context, documentID string, chunkIndex int) (*ChunkRecord, error) {
	var chunk ChunkRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT document_id, chunk_index, text FROM chunks WHERE document_id = ? AND chunk_index = ?",
		documentID, chunkIndex,
	).Scan(&chunk.DocumentID, &chunk.ChunkIndex, &chunk.Text)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query chunk: %v", ErrStorageFailure, err)
	}

	return &chunk, nil
}

// TextLengths returns the rune length of every stored chunk.
func (r *ChunkRepo) TextLengths(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT length(text) FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query chunk lengths: %v", ErrStorageFailure, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var lengths []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: failed to scan chunk length: %v", ErrStorageFailure, err)
		}
		lengths = append(lengths, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", ErrStorageFailure, err)
	}
	return lengths, nil
}
