package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"learnloop/internal/contextutil"
	"learnloop/internal/llm"
	"learnloop/internal/storage"
	"learnloop/internal/vectorstore"
)

const (
	// DefaultTopK is used when a search asks for zero results.
	DefaultTopK = 5
	// MaxTopK caps the number of search results.
	MaxTopK = 50
	// AskTopK is the number of chunks used as answer context.
	AskTopK = 3
	// DefaultThreshold is the similarity a chunk must exceed to match.
	DefaultThreshold = float32(0.3)

	noContextAnswer = "I don't have enough information to answer your question. Please upload some documents first."

	answerSystemPrompt = "You are a helpful AI assistant that answers questions based on the provided document context. " +
		"Always base your answers on the context provided. If the context doesn't contain enough information to answer " +
		"the question, say so clearly. Be concise but thorough in your responses."
)

// Engine provides retrieval over the stored corpus and grounded answers.
type Engine interface {
	// Search returns the topK chunks most similar to query across all documents.
	Search(ctx context.Context, query string, topK int) ([]ScoredChunk, error)
	// Ask answers a question from the best matching chunks.
	Ask(ctx context.Context, question string) (AskResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder  llm.Embedder
	index     vectorstore.VectorStore
	docs      storage.DocumentStore
	chunks    storage.ChunkStore
	generator llm.Generator
	threshold float32
	logger    *slog.Logger
}

// NewEngine creates a new retrieval engine. A threshold <= 0 selects DefaultThreshold.
func NewEngine(
	embedder llm.Embedder,
	index vectorstore.VectorStore,
	docs storage.DocumentStore,
	chunks storage.ChunkStore,
	generator llm.Generator,
	threshold float32,
) Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &ragEngine{
		embedder:  embedder,
		index:     index,
		docs:      docs,
		chunks:    chunks,
		generator: generator,
		threshold: threshold,
		logger:    slog.Default(),
	}
}

// clampTopK maps 0 or less to DefaultTopK and caps at MaxTopK.
func clampTopK(k int) int {
	if k <= 0 {
		return DefaultTopK
	}
	return min(k, MaxTopK)
}

// Search embeds the query once, searches every committed document, and keeps the
// global top k. Ties are ordered by document id, then chunk index.
func (e *ragEngine) Search(ctx context.Context, query string, topK int) ([]ScoredChunk, error) {
	logger := contextutil.LoggerOr(ctx, e.logger)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	k := clampTopK(topK)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	queryVector := embeddings[0]

	docs, err := e.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var hits []ScoredChunk
	for _, doc := range docs {
		results, err := e.index.Search(ctx, doc.ID, queryVector, k, e.threshold)
		if err != nil {
			logger.WarnContext(ctx, "failed to search document", "document_id", doc.ID, "error", err)
			continue
		}
		for _, r := range results {
			hits = append(hits, ScoredChunk{
				DocumentID: doc.ID,
				Filename:   doc.Filename,
				ChunkIndex: r.ChunkIndex,
				Similarity: r.Score,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.ChunkIndex < b.ChunkIndex
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := e.chunks.Get(ctx, hit.DocumentID, hit.ChunkIndex)
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch chunk text",
				"document_id", hit.DocumentID, "chunk_index", hit.ChunkIndex, "error", err)
			continue
		}
		hit.Text = chunk.Text
		results = append(results, hit)
	}

	logger.InfoContext(ctx, "search completed", "documents", len(docs), "results", len(results), "k", k)
	return results, nil
}

// Ask answers question from the AskTopK best chunks. When nothing matches, a canned
// answer is returned without calling the generation backend.
func (e *ragEngine) Ask(ctx context.Context, question string) (AskResponse, error) {
	logger := contextutil.LoggerOr(ctx, e.logger)

	sources, err := e.Search(ctx, question, AskTopK)
	if err != nil {
		return AskResponse{}, err
	}
	if len(sources) == 0 {
		logger.InfoContext(ctx, "no matching chunks for question")
		return AskResponse{Answer: noContextAnswer, Sources: []ScoredChunk{}}, nil
	}

	prompt := buildAnswerPrompt(strings.TrimSpace(question), sources)
	logger.DebugContext(ctx, "sending question to generation backend",
		"sources", len(sources), "prompt_length", len(prompt))

	answer, err := e.generator.Generate(ctx, prompt, answerSystemPrompt)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AskResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	logger.InfoContext(ctx, "question answered", "sources", len(sources), "answer_length", len(answer))
	return AskResponse{Answer: strings.TrimSpace(answer), Sources: sources}, nil
}

func buildAnswerPrompt(question string, sources []ScoredChunk) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("From %s: %s", s.Filename, s.Text)
	}

	var b strings.Builder
	b.WriteString("Context from uploaded documents:\n\n")
	b.WriteString(strings.Join(parts, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a helpful answer based on the context above:")
	return b.String()
}
