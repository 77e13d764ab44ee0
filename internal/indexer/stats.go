package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

const (
	// ChunkerVersion is the version identifier for the chunker implementation.
	// Update this when chunking logic changes significantly.
	ChunkerVersion = "window-v1"
	// RunesPerToken is an approximation for token counting (4 chars per token).
	RunesPerToken = 4.0
)

// CorpusStats describes the stored corpus.
type CorpusStats struct {
	Documents         int              `json:"documents"`
	Chunks            int              `json:"chunks"`
	Concepts          int              `json:"concepts"`
	DocumentsNoChunks int              `json:"documents_with_0_chunks"`
	ChunkLength       ChunkLengthStats `json:"chunk_length"`
	// EstimatedTokensMean approximates the mean tokens per chunk.
	EstimatedTokensMean float64 `json:"estimated_tokens_mean"`
	ChunkerVersion      string  `json:"chunker_version"`
	// IndexVersion is a hash identifying the index build (chunker + embedding model + params).
	IndexVersion string `json:"index_version"`
}

// ChunkLengthStats summarizes chunk lengths in runes.
type ChunkLengthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P50  int     `json:"p50"`
	P95  int     `json:"p95"`
}

// Stats computes corpus statistics from the database.
func (p *Pipeline) Stats(ctx context.Context) (*CorpusStats, error) {
	counts, err := p.docs.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count corpus: %w", err)
	}

	lengths, err := p.chunks.TextLengths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk lengths: %w", err)
	}

	stats := &CorpusStats{
		Documents:         counts.Documents,
		Chunks:            counts.Chunks,
		Concepts:          counts.Concepts,
		DocumentsNoChunks: counts.DocumentsNoChunks,
		ChunkLength:       computeLengthStats(lengths),
		ChunkerVersion:    ChunkerVersion,
		IndexVersion:      p.IndexVersion(),
	}
	stats.EstimatedTokensMean = math.Round(stats.ChunkLength.Mean/RunesPerToken*100) / 100

	return stats, nil
}

// IndexVersion hashes the chunker version, embedding model and chunking parameters.
func (p *Pipeline) IndexVersion() string {
	input := fmt.Sprintf("%s|%s|size=%d|overlap=%d",
		ChunkerVersion, p.cfg.EmbeddingModel, p.chunker.Size, p.chunker.Overlap)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16] // 16 hex chars = 64 bits
}

// computeLengthStats computes min, max, mean, p50 and p95.
func computeLengthStats(lengths []int) ChunkLengthStats {
	if len(lengths) == 0 {
		return ChunkLengthStats{}
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	sum := 0
	for _, l := range sorted {
		sum += l
	}
	mean := float64(sum) / float64(len(sorted))

	return ChunkLengthStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P50:  percentile(sorted, 0.50),
		P95:  percentile(sorted, 0.95),
	}
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []int, q float64) int {
	rank := int(math.Ceil(float64(len(sorted))*q)) - 1
	rank = max(0, min(rank, len(sorted)-1))
	return sorted[rank]
}
