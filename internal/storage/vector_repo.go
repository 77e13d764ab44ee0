package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_blob_store.go -package=mocks learnloop/internal/storage VectorBlobStore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
)

// VectorBlobStore reads and writes the per-document embedding blob.
type VectorBlobStore interface {
	// Get returns the vectors of a document in chunk order. Returns ErrNotFound if none are stored.
	Get(ctx context.Context, documentID string) ([][]float32, error)
	// Put replaces the vectors of a document.
	Put(ctx context.Context, documentID string, vectors [][]float32) error
	// Delete removes the vectors of a document. Missing rows are not an error.
	Delete(ctx context.Context, documentID string) error
}

// VectorRepo stores embeddings as one little-endian float32 blob per document.
// It implements the VectorBlobStore interface.
type VectorRepo struct {
	db *sql.DB
}

// NewVectorRepo creates a new VectorRepo.
func NewVectorRepo(db *sql.DB) *VectorRepo {
	return &VectorRepo{db: db}
}

// Get returns the vectors of a document in chunk order.
func (r *VectorRepo) Get(ctx context.Context, documentID string) ([][]float32, error) {
	var dim, count int
	var data []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT dimension, vector_count, data FROM document_vectors WHERE document_id = ?",
		documentID,
	).Scan(&dim, &count, &data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query vectors: %v", ErrStorageFailure, err)
	}
	return decodeVectors(data, dim, count)
}

// Put replaces the vectors of a document.
func (r *VectorRepo) Put(ctx context.Context, documentID string, vectors [][]float32) error {
	return putVectors(ctx, r.db, documentID, vectors)
}

// Delete removes the vectors of a document.
func (r *VectorRepo) Delete(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM document_vectors WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("%w: failed to delete vectors: %v", ErrStorageFailure, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putVectors(ctx context.Context, db execer, documentID string, vectors [][]float32) error {
	data, dim, err := encodeVectors(vectors)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO document_vectors (document_id, dimension, vector_count, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT (document_id) DO UPDATE SET
		 dimension = excluded.dimension, vector_count = excluded.vector_count, data = excluded.data`,
		documentID, dim, len(vectors), data,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to store vectors: %v", ErrStorageFailure, err)
	}
	return nil
}

// encodeVectors packs equally sized vectors into one blob.
func encodeVectors(vectors [][]float32) ([]byte, int, error) {
	if len(vectors) == 0 {
		return []byte{}, 0, nil
	}
	dim := len(vectors[0])
	buf := make([]byte, 0, len(vectors)*dim*4)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, 0, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf, dim, nil
}

func decodeVectors(data []byte, dim, count int) ([][]float32, error) {
	if len(data) != dim*count*4 {
		return nil, fmt.Errorf("%w: vector blob has %d bytes, want %d", ErrStorageFailure, len(data), dim*count*4)
	}
	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			off := (i*dim + j) * 4
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		}
		vectors[i] = v
	}
	return vectors, nil
}
