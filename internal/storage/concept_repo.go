package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_concept_store.go -package=mocks learnloop/internal/storage ConceptStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MasteryUpdate maps a concept's current level and progress to the new ones.
type MasteryUpdate func(level, progress int) (newLevel, newProgress int)

// ConceptStore defines the interface for concept storage operations.
type ConceptStore interface {
	// InsertMany inserts concepts, skipping any (document, main, sub) already stored.
	// A new concept joins the mastery state of its main label when that label is further
	// along. IDs are assigned to the records that were inserted. Returns the number inserted.
	InsertMany(ctx context.Context, concepts []*ConceptRecord) (int, error)
	// List returns all concepts ordered by main and sub label.
	List(ctx context.Context) ([]*ConceptRecord, error)
	// ListByDocument returns the concepts extracted from one document.
	ListByDocument(ctx context.Context, documentID string) ([]*ConceptRecord, error)
	// Get gets a concept by ID. Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (*ConceptRecord, error)
	// UpdateMastery applies update once to the state of the main label that ref names and
	// stores the result on every concept sharing that label. The label state is its
	// furthest-along concept, which comes first in the result. ref is a concept ID or a
	// main label. Returns ErrNotFound if nothing matches.
	UpdateMastery(ctx context.Context, ref string, update MasteryUpdate) ([]*ConceptRecord, error)
}

// ConceptRepo provides methods for concept operations.
// It implements the ConceptStore interface.
type ConceptRepo struct {
	db *sql.DB
}

// NewConceptRepo creates a new ConceptRepo.
func NewConceptRepo(db *sql.DB) *ConceptRepo {
	return &ConceptRepo{db: db}
}

const conceptColumns = "id, document_id, main, sub, description, mastery_level, progress, updated_at"

// InsertMany inserts concepts, skipping duplicates.
func (r *ConceptRepo) InsertMany(ctx context.Context, concepts []*ConceptRecord) (n int, err error) {
	if len(concepts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", ErrStorageFailure, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range concepts {
		// UNIQUE does not fire on NULL document_id, so the existence check is done by hand.
		var exists int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM concepts WHERE document_id IS ? AND main = ? AND sub = ?",
			nullString(c.DocumentID), c.Main, c.Sub,
		).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to check concept: %v", ErrStorageFailure, err)
		}
		if exists > 0 {
			continue
		}

		level, progress := c.MasteryLevel, c.Progress
		var storedLevel, storedProgress int
		switch err = tx.QueryRowContext(ctx,
			"SELECT mastery_level, progress FROM concepts WHERE main = ? ORDER BY mastery_level DESC, progress DESC LIMIT 1",
			c.Main,
		).Scan(&storedLevel, &storedProgress); {
		case err == sql.ErrNoRows:
			err = nil
		case err != nil:
			return 0, fmt.Errorf("%w: failed to load label mastery: %v", ErrStorageFailure, err)
		case storedLevel > level || (storedLevel == level && storedProgress > progress):
			level, progress = storedLevel, storedProgress
		}

		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO concepts (id, document_id, main, sub, description, mastery_level, progress) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, nullString(c.DocumentID), c.Main, c.Sub, c.Description, level, progress,
		)
		if err != nil {
			return 0, fmt.Errorf("%w: failed to insert concept: %v", ErrStorageFailure, err)
		}
		c.ID = id
		c.MasteryLevel, c.Progress = level, progress
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit concepts: %v", ErrStorageFailure, err)
	}
	return n, nil
}

// List returns all concepts ordered by main and sub label.
func (r *ConceptRepo) List(ctx context.Context) ([]*ConceptRecord, error) {
	return r.query(ctx, "SELECT "+conceptColumns+" FROM concepts ORDER BY main, sub, id")
}

// ListByDocument returns the concepts extracted from one document.
func (r *ConceptRepo) ListByDocument(ctx context.Context, documentID string) ([]*ConceptRecord, error) {
	return r.query(ctx, "SELECT "+conceptColumns+" FROM concepts WHERE document_id = ? ORDER BY main, sub, id", documentID)
}

// Get gets a concept by ID.
func (r *ConceptRepo) Get(ctx context.Context, id string) (*ConceptRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+conceptColumns+" FROM concepts WHERE id = ?", id)
	return scanConcept(row)
}

// UpdateMastery advances the main label that ref names and stores the new state on
// all of its concepts.
func (r *ConceptRepo) UpdateMastery(ctx context.Context, ref string, update MasteryUpdate) (updated []*ConceptRecord, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", ErrStorageFailure, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	label := ref
	var byID string
	switch err = tx.QueryRowContext(ctx, "SELECT main FROM concepts WHERE id = ?", ref).Scan(&byID); {
	case err == nil:
		label = byID
	case err == sql.ErrNoRows:
		err = nil
	default:
		return nil, fmt.Errorf("%w: failed to resolve concept: %v", ErrStorageFailure, err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT "+conceptColumns+" FROM concepts WHERE main = ? ORDER BY mastery_level DESC, progress DESC, sub, id", label)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query concepts: %v", ErrStorageFailure, err)
	}
	concepts, err := collectConcepts(rows)
	if err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		err = ErrNotFound
		return nil, err
	}

	level, progress := update(concepts[0].MasteryLevel, concepts[0].Progress)
	_, err = tx.ExecContext(ctx,
		"UPDATE concepts SET mastery_level = ?, progress = ?, updated_at = CURRENT_TIMESTAMP WHERE main = ?",
		level, progress, label,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to update concept mastery: %v", ErrStorageFailure, err)
	}
	for _, c := range concepts {
		c.MasteryLevel, c.Progress = level, progress
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit mastery update: %v", ErrStorageFailure, err)
	}
	return concepts, nil
}

func (r *ConceptRepo) query(ctx context.Context, query string, args ...any) ([]*ConceptRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query concepts: %v", ErrStorageFailure, err)
	}
	return collectConcepts(rows)
}

func collectConcepts(rows *sql.Rows) ([]*ConceptRecord, error) {
	defer func() {
		_ = rows.Close()
	}()

	concepts := []*ConceptRecord{}
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, err
		}
		concepts = append(concepts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", ErrStorageFailure, err)
	}
	return concepts, nil
}

func scanConcept(row rowScanner) (*ConceptRecord, error) {
	var c ConceptRecord
	var documentID, updatedAt sql.NullString
	err := row.Scan(&c.ID, &documentID, &c.Main, &c.Sub, &c.Description, &c.MasteryLevel, &c.Progress, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan concept: %v", ErrStorageFailure, err)
	}
	c.DocumentID = documentID.String
	c.UpdatedAt = parseTimestamp(updatedAt.String)
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
