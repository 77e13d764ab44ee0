package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"learnloop/internal/contextutil"
	"learnloop/internal/extract"
	"learnloop/internal/llm"
	"learnloop/internal/storage"
	"learnloop/internal/vectorstore"
)

// Config holds the pipeline settings.
type Config struct {
	UploadDir      string
	ChunkSize      int
	ChunkOverlap   int
	EmbeddingModel string // Recorded in the index version
}

// Pipeline ingests files into the corpus: dedup, raw copy, extraction, chunking,
// embedding and one transactional write. When a mirror index is configured the
// vectors are also pushed there before the write commits.
type Pipeline struct {
	docs      storage.DocumentStore
	chunks    storage.ChunkStore
	blobs     storage.VectorBlobStore
	extractor TextExtractor
	embedder  llm.Embedder
	mirror    vectorstore.VectorStore
	chunker   *Chunker
	cfg       Config
	group     singleflight.Group
	logger    *slog.Logger
}

// NewPipeline creates a new ingestion pipeline. mirror may be nil.
func NewPipeline(
	docs storage.DocumentStore,
	chunks storage.ChunkStore,
	blobs storage.VectorBlobStore,
	extractor TextExtractor,
	embedder llm.Embedder,
	mirror vectorstore.VectorStore,
	cfg Config,
) (*Pipeline, error) {
	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		docs:      docs,
		chunks:    chunks,
		blobs:     blobs,
		extractor: extractor,
		embedder:  embedder,
		mirror:    mirror,
		chunker:   chunker,
		cfg:       cfg,
		logger:    slog.Default(),
	}, nil
}

// HashContent returns the hex SHA-256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document"
	}
	return name
}

// Ingest adds content to the corpus. Known content returns already_exists with the
// existing id and no side effects. Concurrent calls for the same bytes are collapsed:
// one does the work and the others report already_exists.
func (p *Pipeline) Ingest(ctx context.Context, content []byte, filename string) (IngestResult, error) {
	name := cleanFilename(filename)
	hash := HashContent(content)

	leader := false
	v, err, _ := p.group.Do(hash, func() (any, error) {
		leader = true
		return p.ingest(ctx, content, name, hash)
	})
	if err != nil {
		return IngestResult{Status: storage.StatusError, Filename: name}, err
	}

	res := v.(IngestResult)
	if !leader {
		res.Filename = name
		if res.Status == storage.StatusProcessed {
			res.Status = storage.StatusAlreadyExists
		}
	}
	return res, nil
}

func (p *Pipeline) ingest(ctx context.Context, content []byte, name, hash string) (IngestResult, error) {
	logger := contextutil.LoggerOr(ctx, p.logger).With("filename", name, "hash", hash[:12])

	if res, found, err := p.existing(ctx, name, hash); err != nil || found {
		if found {
			logger.InfoContext(ctx, "duplicate content, skipping", "document_id", res.DocumentID)
		}
		return res, err
	}

	if !p.extractor.Supports(name) {
		return IngestResult{}, fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, filepath.Ext(name))
	}

	logger.InfoContext(ctx, "ingesting document", "bytes", len(content))

	path, err := p.saveRaw(name, hash, content)
	if err != nil {
		return IngestResult{}, err
	}
	keepFile := false
	defer func() {
		if keepFile {
			return
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnContext(ctx, "failed to remove raw file", "path", path, "error", err)
		}
	}()

	text, err := p.extractor.Extract(ctx, name, content)
	if err != nil {
		return IngestResult{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return IngestResult{}, fmt.Errorf("%w: %s", ErrEmptyContent, name)
	}

	chunks := p.chunker.Split(text)
	logger.DebugContext(ctx, "chunked document", "chunks", len(chunks), "runes", len([]rune(text)))

	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return IngestResult{}, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	doc := &storage.DocumentRecord{
		ID:          uuid.New().String(),
		Filename:    name,
		ContentHash: hash,
		FilePath:    path,
		FileSize:    int64(len(content)),
		Status:      storage.StatusProcessed,
	}

	mirrored := false
	var beforeCommit func(context.Context) error
	if p.mirror != nil {
		beforeCommit = func(ctx context.Context) error {
			if err := p.mirror.Upsert(ctx, doc.ID, vectors); err != nil {
				return fmt.Errorf("failed to index vectors: %w", err)
			}
			mirrored = true
			return nil
		}
	}

	if err := p.docs.Create(ctx, doc, chunks, vectors, beforeCommit); err != nil {
		if mirrored {
			if derr := p.mirror.Delete(ctx, doc.ID); derr != nil {
				logger.WarnContext(ctx, "failed to remove index points after rollback", "document_id", doc.ID, "error", derr)
			}
		}
		if errors.Is(err, storage.ErrDuplicateContent) {
			res, found, lerr := p.existing(ctx, name, hash)
			if lerr != nil {
				return IngestResult{}, lerr
			}
			if found {
				existing, _ := p.docs.Get(ctx, res.DocumentID)
				keepFile = existing != nil && existing.FilePath == path
				return res, nil
			}
		}
		return IngestResult{}, fmt.Errorf("failed to store document: %w", err)
	}
	keepFile = true

	logger.InfoContext(ctx, "document processed", "document_id", doc.ID, "chunks", len(chunks))
	return IngestResult{
		Status:     storage.StatusProcessed,
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		Filename:   name,
	}, nil
}

// existing looks the hash up. found is false when no document has it.
func (p *Pipeline) existing(ctx context.Context, name, hash string) (IngestResult, bool, error) {
	doc, err := p.docs.GetByHash(ctx, hash)
	if errors.Is(err, storage.ErrNotFound) {
		return IngestResult{}, false, nil
	}
	if err != nil {
		return IngestResult{}, false, fmt.Errorf("failed to check existing document: %w", err)
	}
	return IngestResult{
		Status:     storage.StatusAlreadyExists,
		DocumentID: doc.ID,
		ChunkCount: doc.ChunkCount,
		Filename:   name,
	}, true, nil
}

func (p *Pipeline) saveRaw(name, hash string, content []byte) (string, error) {
	if err := os.MkdirAll(p.cfg.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(p.cfg.UploadDir, hash[:12]+"_"+name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

// IngestPaths ingests files and directories (scanned recursively for supported
// extensions). A failing file is reported in its result and does not stop the batch;
// only cancellation returns an error.
func (p *Pipeline) IngestPaths(ctx context.Context, paths []string) ([]IngestResult, error) {
	logger := contextutil.LoggerOr(ctx, p.logger)

	var results []IngestResult
	var successCount, errorCount int

	record := func(res IngestResult, err error, name string) {
		if err != nil {
			errorCount++
			logger.ErrorContext(ctx, "failed to ingest file", "path", name, "error", err)
			results = append(results, IngestResult{Status: storage.StatusError, Filename: name, Error: err.Error()})
			return
		}
		successCount++
		results = append(results, res)
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		info, err := os.Stat(path)
		if err != nil {
			record(IngestResult{}, fmt.Errorf("failed to stat %s: %w", path, err), path)
			continue
		}

		files := []string{path}
		if info.IsDir() {
			scanned, err := ScanDir(ctx, path, p.extractor.Supports)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			if err != nil {
				record(IngestResult{}, err, path)
			}
			files = files[:0]
			for _, f := range scanned {
				files = append(files, f.AbsPath)
			}
		}

		for _, file := range files {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			content, err := os.ReadFile(file)
			if err != nil {
				record(IngestResult{}, fmt.Errorf("failed to read file %s: %w", file, err), file)
				continue
			}
			res, err := p.Ingest(ctx, content, filepath.Base(file))
			record(res, err, file)
		}
	}

	logger.InfoContext(ctx, "ingestion completed", "files", len(results), "success", successCount, "errors", errorCount)
	return results, nil
}

// Delete removes a document and everything derived from it. Index points and the raw
// file are removed after the rows; failures there become warnings.
func (p *Pipeline) Delete(ctx context.Context, id string) (DeleteResult, error) {
	logger := contextutil.LoggerOr(ctx, p.logger)

	doc, err := p.docs.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}

	res := DeleteResult{DocumentID: doc.ID, Filename: doc.Filename}

	if p.mirror != nil {
		if err := p.mirror.Delete(ctx, doc.ID); err != nil {
			logger.WarnContext(ctx, "failed to delete index points", "document_id", doc.ID, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("index cleanup failed: %v", err))
		}
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.WarnContext(ctx, "failed to delete raw file", "path", doc.FilePath, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("file cleanup failed: %v", err))
		}
	}

	logger.InfoContext(ctx, "document deleted", "document_id", doc.ID, "filename", doc.Filename, "warnings", len(res.Warnings))
	return res, nil
}

// ListDocuments returns all documents, newest first.
func (p *Pipeline) ListDocuments(ctx context.Context) ([]*storage.DocumentRecord, error) {
	return p.docs.List(ctx)
}

// GetDocument returns one document. Returns storage.ErrNotFound for unknown ids.
func (p *Pipeline) GetDocument(ctx context.Context, id string) (*storage.DocumentRecord, error) {
	return p.docs.Get(ctx, id)
}

// GetDocumentChunks returns a document's chunks ordered by index.
// Returns storage.ErrNotFound for unknown ids.
func (p *Pipeline) GetDocumentChunks(ctx context.Context, id string) ([]*storage.ChunkRecord, error) {
	if _, err := p.docs.Get(ctx, id); err != nil {
		return nil, err
	}
	return p.chunks.ListByDocument(ctx, id)
}

// DocumentText rebuilds a document's extracted text from its chunks.
func (p *Pipeline) DocumentText(ctx context.Context, id string) (string, error) {
	records, err := p.GetDocumentChunks(ctx, id)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	return Reassemble(texts, p.chunker.Overlap), nil
}

// SyncIndex pushes every stored vector blob to the mirror index and returns the
// number of documents synced. Without a mirror it does nothing.
func (p *Pipeline) SyncIndex(ctx context.Context) (int, error) {
	if p.mirror == nil {
		return 0, nil
	}
	logger := contextutil.LoggerOr(ctx, p.logger)

	docs, err := p.docs.List(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		vectors, err := p.blobs.Get(ctx, doc.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return synced, fmt.Errorf("failed to load vectors for %s: %w", doc.ID, err)
		}
		if err := p.mirror.Delete(ctx, doc.ID); err != nil {
			return synced, fmt.Errorf("failed to clear index points for %s: %w", doc.ID, err)
		}
		if err := p.mirror.Upsert(ctx, doc.ID, vectors); err != nil {
			return synced, fmt.Errorf("failed to index vectors for %s: %w", doc.ID, err)
		}
		synced++
	}

	logger.InfoContext(ctx, "index synced", "documents", synced)
	return synced, nil
}
