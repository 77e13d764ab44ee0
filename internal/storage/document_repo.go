package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks learnloop/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// Create inserts the document, its chunks and its vectors in one transaction.
	// A new UUID is assigned when doc.ID is empty. beforeCommit, if non-nil, runs
	// after all rows are written and before the commit; an error from it rolls back.
	// Returns ErrDuplicateContent if a document with the same hash exists.
	Create(ctx context.Context, doc *DocumentRecord, chunks []string, vectors [][]float32, beforeCommit func(context.Context) error) error
	// Get gets a document by ID. Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (*DocumentRecord, error)
	// GetByHash gets a document by content hash. Returns ErrNotFound if not found.
	GetByHash(ctx context.Context, hash string) (*DocumentRecord, error)
	// List returns all documents, newest first.
	List(ctx context.Context) ([]*DocumentRecord, error)
	// Delete removes a document with its concepts, chunks and vectors and returns the removed row.
	// Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) (*DocumentRecord, error)
	// Counts returns corpus-wide counters.
	Counts(ctx context.Context) (*CorpusCounts, error)
}

// CorpusCounts holds row counts across the corpus.
type CorpusCounts struct {
	Documents         int
	Chunks            int
	Concepts          int
	DocumentsNoChunks int
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, filename, content_hash, file_path, file_size, chunk_count, status, uploaded_at"

// Create inserts the document, its chunks and its vectors in one transaction.
func (r *DocumentRepo) Create(ctx context.Context, doc *DocumentRecord, chunks []string, vectors [][]float32, beforeCommit func(context.Context) error) (err error) {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.ChunkCount = len(chunks)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrStorageFailure, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO documents (id, filename, content_hash, file_path, file_size, chunk_count, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		doc.ID, doc.Filename, doc.ContentHash, doc.FilePath, doc.FileSize, doc.ChunkCount, doc.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateContent
		}
		return fmt.Errorf("%w: failed to insert document: %v", ErrStorageFailure, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO chunks (document_id, chunk_index, text) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: failed to prepare chunk insert: %v", ErrStorageFailure, err)
	}
	defer func() {
		_ = stmt.Close()
	}()
	for i, text := range chunks {
		if _, err = stmt.ExecContext(ctx, doc.ID, i, text); err != nil {
			return fmt.Errorf("%w: failed to insert chunk %d: %v", ErrStorageFailure, i, err)
		}
	}

	if err = putVectors(ctx, tx, doc.ID, vectors); err != nil {
		return err
	}

	if beforeCommit != nil {
		if err = beforeCommit(ctx); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit document: %v", ErrStorageFailure, err)
	}
	return nil
}

// Get gets a document by ID.
func (r *DocumentRepo) Get(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// GetByHash gets a document by content hash.
func (r *DocumentRepo) GetByHash(ctx context.Context, hash string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE content_hash = ?", hash)
	return scanDocument(row)
}

// List returns all documents, newest first.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents ORDER BY uploaded_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query documents: %v", ErrStorageFailure, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", ErrStorageFailure, err)
	}
	return docs, nil
}

// Delete removes a document with its concepts, chunks and vectors in one transaction.
func (r *DocumentRepo) Delete(ctx context.Context, id string) (doc *DocumentRecord, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", ErrStorageFailure, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	if doc, err = scanDocument(row); err != nil {
		return nil, err
	}

	// Children are removed explicitly so the delete holds even with foreign keys off.
	for _, stmt := range []string{
		"DELETE FROM concepts WHERE document_id = ?",
		"DELETE FROM chunks WHERE document_id = ?",
		"DELETE FROM document_vectors WHERE document_id = ?",
		"DELETE FROM documents WHERE id = ?",
	} {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return nil, fmt.Errorf("%w: failed to delete document: %v", ErrStorageFailure, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit delete: %v", ErrStorageFailure, err)
	}
	return doc, nil
}

// Counts returns corpus-wide counters.
func (r *DocumentRepo) Counts(ctx context.Context) (*CorpusCounts, error) {
	var c CorpusCounts
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM documents),
		(SELECT COUNT(*) FROM chunks),
		(SELECT COUNT(*) FROM concepts),
		(SELECT COUNT(*) FROM documents WHERE id NOT IN (SELECT DISTINCT document_id FROM chunks))`,
	).Scan(&c.Documents, &c.Chunks, &c.Concepts, &c.DocumentsNoChunks)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count corpus: %v", ErrStorageFailure, err)
	}
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var uploadedAt sql.NullString
	err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentHash, &doc.FilePath, &doc.FileSize,
		&doc.ChunkCount, &doc.Status, &uploadedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan document: %v", ErrStorageFailure, err)
	}
	doc.UploadedAt = parseTimestamp(uploadedAt.String)
	return &doc, nil
}

// parseTimestamp accepts the formats SQLite hands back for DATETIME columns.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
