package storage

import (
	"context"
	"errors"
	"testing"
)

func testDocument(hash string) *DocumentRecord {
	return &DocumentRecord{
		Filename:    hash + ".txt",
		ContentHash: hash,
		FilePath:    "/uploads/" + hash + ".txt",
		FileSize:    42,
		Status:      StatusProcessed,
	}
}

func TestDocumentRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	doc := testDocument("abc")
	chunks := []string{"first chunk", "second chunk"}
	vectors := [][]float32{{1, 0}, {0, 1}}

	if err := repo.Create(ctx, doc, chunks, vectors, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Create() should assign an ID")
	}
	if doc.ChunkCount != 2 {
		t.Errorf("ChunkCount = %d, want 2", doc.ChunkCount)
	}

	got, err := repo.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ContentHash != "abc" || got.ChunkCount != 2 || got.Status != StatusProcessed {
		t.Errorf("Get() = %+v", got)
	}
	if got.UploadedAt.IsZero() {
		t.Error("UploadedAt should be set")
	}

	byHash, err := repo.GetByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("GetByHash() error = %v", err)
	}
	if byHash.ID != doc.ID {
		t.Errorf("GetByHash() ID = %q, want %q", byHash.ID, doc.ID)
	}

	stored, err := NewVectorRepo(db).Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("VectorRepo.Get() error = %v", err)
	}
	if len(stored) != 2 || stored[1][1] != 1 {
		t.Errorf("stored vectors = %v", stored)
	}
}

func TestDocumentRepo_Create_DuplicateHash(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testDocument("same"), []string{"a"}, [][]float32{{1}}, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, testDocument("same"), []string{"a"}, [][]float32{{1}}, nil)
	if !errors.Is(err, ErrDuplicateContent) {
		t.Fatalf("Create() duplicate error = %v, want ErrDuplicateContent", err)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts.Documents != 1 || counts.Chunks != 1 {
		t.Errorf("Counts() = %+v, want 1 document and 1 chunk", counts)
	}
}

func TestDocumentRepo_Create_BeforeCommitFailureRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepo(db)
	ctx := context.Background()

	hookErr := errors.New("index unavailable")
	doc := testDocument("rollback")
	err := repo.Create(ctx, doc, []string{"a", "b"}, [][]float32{{1}, {2}}, func(context.Context) error {
		return hookErr
	})
	if !errors.Is(err, hookErr) {
		t.Fatalf("Create() error = %v, want hook error", err)
	}

	if _, err := repo.GetByHash(ctx, "rollback"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByHash() after rollback error = %v, want ErrNotFound", err)
	}
	var chunks int
	if err := db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&chunks); err != nil {
		t.Fatal(err)
	}
	if chunks != 0 {
		t.Errorf("chunks after rollback = %d, want 0", chunks)
	}
}

func TestDocumentRepo_Create_MismatchedVectors(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	err := repo.Create(context.Background(), testDocument("x"), []string{"a", "b"}, [][]float32{{1}}, nil)
	if err == nil {
		t.Fatal("Create() expected error for vector/chunk count mismatch")
	}
}

func TestDocumentRepo_Get_NotFound(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_List(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("List() on empty db = %d docs", len(docs))
	}

	for _, h := range []string{"h1", "h2", "h3"} {
		if err := repo.Create(ctx, testDocument(h), []string{"t"}, [][]float32{{1}}, nil); err != nil {
			t.Fatalf("Create(%s) error = %v", h, err)
		}
	}
	docs, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("List() = %d docs, want 3", len(docs))
	}
}

func TestDocumentRepo_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepo(db)
	concepts := NewConceptRepo(db)
	ctx := context.Background()

	doc := testDocument("gone")
	if err := repo.Create(ctx, doc, []string{"a", "b"}, [][]float32{{1}, {2}}, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := concepts.InsertMany(ctx, []*ConceptRecord{{DocumentID: doc.ID, Main: "M", Sub: "S"}}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}

	deleted, err := repo.Delete(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.FilePath != doc.FilePath {
		t.Errorf("Delete() returned FilePath %q, want %q", deleted.FilePath, doc.FilePath)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts.Documents != 0 || counts.Chunks != 0 || counts.Concepts != 0 {
		t.Errorf("Counts() after delete = %+v", counts)
	}
	if _, err := NewVectorRepo(db).Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("vectors after delete error = %v, want ErrNotFound", err)
	}

	if _, err := repo.Delete(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_Counts_DocumentsWithoutChunks(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testDocument("empty"), nil, nil, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, testDocument("full"), []string{"x"}, [][]float32{{1}}, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts.DocumentsNoChunks != 1 {
		t.Errorf("DocumentsNoChunks = %d, want 1", counts.DocumentsNoChunks)
	}
}
