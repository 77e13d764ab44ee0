package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// DefaultBatchSize is used when a batch size of zero or less is configured.
const DefaultBatchSize = 32

// EmbeddingOptions controls batching and post-processing shared by all embedders.
type EmbeddingOptions struct {
	// ExpectedSize is the vector size every embedding must have.
	ExpectedSize int

	// BatchSize caps the number of texts sent per request.
	BatchSize int

	// Normalize scales every vector to unit length, making dot product equal cosine similarity.
	Normalize bool

	Timeout time.Duration
}

// batchFunc embeds one batch and returns raw vectors.
type batchFunc func(ctx context.Context, texts []string) ([][]float64, error)

// embedBatched splits texts into batches, validates count and size, and converts to float32.
func embedBatched(ctx context.Context, texts []string, opts EmbeddingOptions, embed batchFunc) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		batch := texts[start:end]

		raw, err := embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(raw) != len(batch) {
			return nil, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(raw))
		}

		for i, data := range raw {
			if len(data) != opts.ExpectedSize {
				return nil, fmt.Errorf("embedding %d has size %d, expected %d", start+i, len(data), opts.ExpectedSize)
			}
			vec := make([]float32, len(data))
			for j, v := range data {
				vec[j] = float32(v)
			}
			if opts.Normalize {
				Normalize(vec)
			}
			result = append(result, vec)
		}
	}

	return result, nil
}

// Normalize scales vec in place to unit length. Zero vectors are left unchanged.
func Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

// EmbeddingsClient talks to an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Options EmbeddingOptions
	client  *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// All embeddings returned by EmbedTexts are validated against opts.ExpectedSize.
func NewEmbeddingsClient(baseURL, apiKey, model string, opts EmbeddingOptions) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		Options: opts,
		client:  newHTTPClient(opts.Timeout),
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates one vector per input text, in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return embedBatched(ctx, texts, c.Options, c.embedBatch)
}

func (c *EmbeddingsClient) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var resp EmbeddingsResponse
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)
	if err := doJSON(ctx, c.client, http.MethodPost, url, c.APIKey, EmbeddingsRequest{Model: c.Model, Input: texts}, &resp); err != nil {
		return nil, err
	}

	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}

	// Servers that report a full set of indices may answer out of order.
	ordered := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(ordered) || ordered[d.Index] != nil {
			return out, nil
		}
		ordered[d.Index] = d.Embedding
	}
	return ordered, nil
}

// OllamaEmbedder talks to the Ollama /api/embed endpoint.
type OllamaEmbedder struct {
	BaseURL string
	Model   string
	Options EmbeddingOptions
	client  *http.Client
}

// NewOllamaEmbedder creates an Ollama embedder.
func NewOllamaEmbedder(baseURL, model string, opts EmbeddingOptions) *OllamaEmbedder {
	return &OllamaEmbedder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Options: opts,
		client:  newHTTPClient(opts.Timeout),
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// EmbedTexts generates one vector per input text, in input order.
func (e *OllamaEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return embedBatched(ctx, texts, e.Options, e.embedBatch)
}

func (e *OllamaEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var resp ollamaEmbedResponse
	url := fmt.Sprintf("%s/api/embed", e.BaseURL)
	if err := doJSON(ctx, e.client, http.MethodPost, url, "", ollamaEmbedRequest{Model: e.Model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", resp.Error)
	}
	return resp.Embeddings, nil
}
