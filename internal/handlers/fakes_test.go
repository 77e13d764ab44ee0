package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"learnloop/internal/indexer"
	"learnloop/internal/rag"
	"learnloop/internal/storage"
)

type mockRAGEngine struct {
	lastQuery    string
	lastTopK     int
	lastQuestion string
	results      []rag.ScoredChunk
	response     rag.AskResponse
	err          error
}

func (m *mockRAGEngine) Search(ctx context.Context, query string, topK int) ([]rag.ScoredChunk, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRAGEngine) Ask(ctx context.Context, question string) (rag.AskResponse, error) {
	m.lastQuestion = question
	if m.err != nil {
		return rag.AskResponse{}, m.err
	}
	return m.response, nil
}

// fakeIndexer serves documents from memory.
type fakeIndexer struct {
	ingest   func(content []byte, filename string) (indexer.IngestResult, error)
	docs     map[string]*storage.DocumentRecord
	chunks   map[string][]*storage.ChunkRecord
	text     map[string]string
	stats    *indexer.CorpusStats
	err      error
	deleted  []string
	synced   int
	ingested []string
}

func (f *fakeIndexer) Ingest(ctx context.Context, content []byte, filename string) (indexer.IngestResult, error) {
	f.ingested = append(f.ingested, filename)
	return f.ingest(content, filename)
}

func (f *fakeIndexer) ListDocuments(ctx context.Context) ([]*storage.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*storage.DocumentRecord, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeIndexer) GetDocument(ctx context.Context, id string) (*storage.DocumentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.docs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (f *fakeIndexer) GetDocumentChunks(ctx context.Context, id string) ([]*storage.ChunkRecord, error) {
	if _, err := f.GetDocument(ctx, id); err != nil {
		return nil, err
	}
	return f.chunks[id], nil
}

func (f *fakeIndexer) DocumentText(ctx context.Context, id string) (string, error) {
	if _, err := f.GetDocument(ctx, id); err != nil {
		return "", err
	}
	return f.text[id], nil
}

func (f *fakeIndexer) Delete(ctx context.Context, id string) (indexer.DeleteResult, error) {
	d, err := f.GetDocument(ctx, id)
	if err != nil {
		return indexer.DeleteResult{}, err
	}
	f.deleted = append(f.deleted, id)
	delete(f.docs, id)
	return indexer.DeleteResult{DocumentID: d.ID, Filename: d.Filename}, nil
}

func (f *fakeIndexer) Stats(ctx context.Context) (*indexer.CorpusStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeIndexer) SyncIndex(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.synced, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	return f.err
}

type fakeBackend struct {
	pingErr   error
	models    []string
	modelsErr error
}

func (f *fakeBackend) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return "", nil
}

func (f *fakeBackend) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeBackend) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.modelsErr
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}
