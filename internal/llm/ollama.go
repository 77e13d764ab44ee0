package llm

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

// OllamaClient talks to the native Ollama API.
type OllamaClient struct {
	BaseURL string
	Model   string
	client  *http.Client
}

// NewOllamaClient creates an Ollama generation client.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		client:  newHTTPClient(timeout),
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type ollamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type ollamaPullResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Generate calls /api/generate without streaming.
func (c *OllamaClient) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		System: systemPrompt,
	}

	var resp ollamaGenerateResponse
	url := fmt.Sprintf("%s/api/generate", c.BaseURL)
	if err := doJSON(ctx, c.client, http.MethodPost, url, "", payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	return resp.Response, nil
}

// ListModels returns the names of locally available models.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	var resp ollamaTagsResponse
	url := fmt.Sprintf("%s/api/tags", c.BaseURL)
	if err := doJSON(ctx, c.client, http.MethodGet, url, "", nil, &resp); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

// Ping checks that the server answers the tags endpoint.
func (c *OllamaClient) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// IsModelAvailable reports whether name is already pulled. A name without a tag
// matches its ":latest" variant.
func (c *OllamaClient) IsModelAvailable(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(models, name) {
		return true, nil
	}
	if !strings.Contains(name, ":") {
		return slices.Contains(models, name+":latest"), nil
	}
	return false, nil
}

// PullModel downloads name unless it is already available.
func (c *OllamaClient) PullModel(ctx context.Context, name string) error {
	available, err := c.IsModelAvailable(ctx, name)
	if err == nil && available {
		return nil
	}

	var resp ollamaPullResponse
	url := fmt.Sprintf("%s/api/pull", c.BaseURL)
	if err := doJSON(ctx, c.client, http.MethodPost, url, "", ollamaPullRequest{Model: name}, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("model pull failed: %s", resp.Error)
	}
	if resp.Status != "success" {
		return fmt.Errorf("model pull ended with status %q", resp.Status)
	}
	return nil
}
