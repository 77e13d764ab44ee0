package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks learnloop/internal/vectorstore VectorStore

import "context"

// SearchResult is one chunk of a document scored against a query vector.
type SearchResult struct {
	ChunkIndex int
	Score      float32
}

// VectorStore holds the ordered chunk vectors of each document and answers
// similarity queries scoped to one document.
type VectorStore interface {
	// Upsert replaces the vectors of a document. vectors[i] belongs to chunk i.
	Upsert(ctx context.Context, documentID string, vectors [][]float32) error

	// Search returns at most k chunks of the document scoring strictly above minScore,
	// best first. Ties are ordered by chunk index. An unknown document yields no results.
	Search(ctx context.Context, documentID string, query []float32, k int, minScore float32) ([]SearchResult, error)

	// Delete removes every vector of a document.
	Delete(ctx context.Context, documentID string) error
}
