// Package app wires the configured storage, backends and services shared by the
// API server and the command-line client.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"learnloop/internal/config"
	"learnloop/internal/extract"
	"learnloop/internal/http"
	"learnloop/internal/indexer"
	"learnloop/internal/llm"
	"learnloop/internal/parser"
	"learnloop/internal/rag"
	"learnloop/internal/service"
	"learnloop/internal/storage"
	"learnloop/internal/vectorstore"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Docs     *storage.DocumentRepo
	Concepts *storage.ConceptRepo
	Pipeline *indexer.Pipeline
	Engine   rag.Engine
	Learning service.LearningService
	Backend  llm.Backend
	Embedder llm.Embedder
	// Ollama is set when the generation backend is Ollama; it can pull models.
	Ollama *llm.OllamaClient

	closers []func() error
}

// New opens the database, runs migrations and builds every component from cfg.
// With the Qdrant index the collection is created when missing.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &App{Config: cfg, DB: db}
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("database initialized", "path", cfg.DBPath)

	docs := storage.NewDocumentRepo(db)
	chunks := storage.NewChunkRepo(db)
	concepts := storage.NewConceptRepo(db)
	blobs := storage.NewVectorRepo(db)
	a.Docs = docs
	a.Concepts = concepts

	a.Backend, a.Ollama = newBackend(cfg)
	a.Embedder = newEmbedder(cfg)

	index, mirror, err := a.newVectorIndex(ctx, blobs)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Pipeline, err = indexer.NewPipeline(docs, chunks, blobs, extract.Default(nil), a.Embedder, mirror, indexer.Config{
		UploadDir:      cfg.UploadDir,
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		EmbeddingModel: cfg.EmbeddingModelName,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	a.Engine = rag.NewEngine(a.Embedder, index, docs, chunks, a.Backend, cfg.SimilarityThreshold)
	a.Learning = service.NewLearningService(a.Backend, parser.New(nil), docs, chunks, concepts)

	return a, nil
}

func newBackend(cfg *config.Config) (llm.Backend, *llm.OllamaClient) {
	if cfg.LLMProvider == config.ProviderOpenAI {
		return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout), nil
	}
	c := llm.NewOllamaClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout)
	return c, c
}

func newEmbedder(cfg *config.Config) llm.Embedder {
	opts := llm.EmbeddingOptions{
		ExpectedSize: cfg.EmbeddingSize,
		BatchSize:    cfg.EmbeddingBatchSize,
		Normalize:    cfg.EmbeddingNormalize,
		Timeout:      cfg.LLMTimeout,
	}
	if cfg.EmbeddingProvider == config.ProviderOpenAI {
		return llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, opts)
	}
	return llm.NewOllamaEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, opts)
}

// newVectorIndex returns the index searches run against and, for external indexes,
// the mirror the pipeline keeps in sync. The SQLite index reads the stored blobs
// directly and needs no mirror.
func (a *App) newVectorIndex(ctx context.Context, blobs storage.VectorBlobStore) (vectorstore.VectorStore, vectorstore.VectorStore, error) {
	if a.Config.VectorIndex != config.IndexQdrant {
		return vectorstore.NewBlobStore(blobs), nil, nil
	}

	qs, err := vectorstore.NewQdrantStore(a.Config.QdrantURL, a.Config.QdrantCollection)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, qs.Close)

	if err := qs.EnsureCollection(ctx, a.Config.EmbeddingSize); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	slog.Info("Qdrant collection ready", "collection", a.Config.QdrantCollection, "vector_size", a.Config.EmbeddingSize)
	return qs, qs, nil
}

// VerifyEmbedder embeds a probe text and checks the vector size.
func (a *App) VerifyEmbedder(ctx context.Context) error {
	vectors, err := a.Embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) != a.Config.EmbeddingSize {
		return fmt.Errorf("embedding vector size mismatch: expected %d", a.Config.EmbeddingSize)
	}
	return nil
}

// RouterDeps returns the HTTP router dependencies.
func (a *App) RouterDeps() *http.Deps {
	return &http.Deps{
		Corpus:      a.Pipeline,
		RAGEngine:   a.Engine,
		Learning:    a.Learning,
		DB:          a.DB,
		Backend:     a.Backend,
		AutoExtract: a.Config.AutoExtractConcepts,
	}
}

// Close releases every opened resource, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// NewLogger builds the slog logger described by cfg's level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
