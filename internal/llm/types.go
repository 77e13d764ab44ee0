package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks learnloop/internal/llm Generator,Embedder

import (
	"context"
	"errors"
)

// ErrBackendUnavailable is returned when a backend cannot be reached, times out,
// or answers with a server error.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Generator produces text from a prompt and a system prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Embedder turns texts into vectors, one per text, in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Backend is a generation backend that can also report its health and models.
type Backend interface {
	Generator
	Ping(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
}

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	// If 0, the server default is used.
	Temperature float32
}
