package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported provider and index names.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	IndexSQLite = "sqlite"
	IndexQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	LLMProvider string
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	LLMTimeout  time.Duration

	EmbeddingProvider  string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	EmbeddingSize      int
	EmbeddingBatchSize int
	EmbeddingNormalize bool

	DBPath    string
	UploadDir string

	ChunkSize           int
	ChunkOverlap        int
	SimilarityThreshold float32

	VectorIndex      string
	QdrantURL        string
	QdrantCollection string

	AutoExtractConcepts bool

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent directory, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	llmBaseURL := getEnv("LLM_BASE_URL", "http://localhost:11434")
	llmAPIKey := getEnv("LLM_API_KEY", "dummy-key")

	cfg := &Config{
		LLMProvider:        strings.ToLower(getEnv("LLM_PROVIDER", ProviderOllama)),
		LLMBaseURL:         llmBaseURL,
		LLMModel:           getEnv("LLM_MODEL", "gemma3:4b"),
		LLMAPIKey:          llmAPIKey,
		EmbeddingProvider:  strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderOllama)),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", llmBaseURL),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "all-minilm"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", llmAPIKey),
		DBPath:             getEnv("DB_PATH", "./data/learnloop.db"),
		UploadDir:          getEnv("UPLOAD_DIR", "./data/uploads"),
		VectorIndex:        strings.ToLower(getEnv("VECTOR_INDEX", IndexSQLite)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "chunks"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.EmbeddingSize, err = getPositiveInt("EMBEDDING_VECTOR_SIZE", 384); err != nil {
		return nil, err
	}
	if cfg.EmbeddingBatchSize, err = getPositiveInt("EMBEDDING_BATCH_SIZE", 32); err != nil {
		return nil, err
	}
	if cfg.EmbeddingNormalize, err = getBool("EMBEDDING_NORMALIZE", true); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getPositiveInt("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getInt("CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.AutoExtractConcepts, err = getBool("AUTO_EXTRACT_CONCEPTS", true); err != nil {
		return nil, err
	}

	threshold, err := strconv.ParseFloat(getEnv("SIMILARITY_THRESHOLD", "0.3"), 32)
	if err != nil {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be a valid number: %w", err)
	}
	cfg.SimilarityThreshold = float32(threshold)

	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.UploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLMProvider != ProviderOllama && c.LLMProvider != ProviderOpenAI {
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOllama, ProviderOpenAI, c.LLMProvider)
	}
	if c.EmbeddingProvider != ProviderOllama && c.EmbeddingProvider != ProviderOpenAI {
		return fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderOllama, ProviderOpenAI, c.EmbeddingProvider)
	}
	if c.VectorIndex != IndexSQLite && c.VectorIndex != IndexQdrant {
		return fmt.Errorf("VECTOR_INDEX must be %q or %q, got %q", IndexSQLite, IndexQdrant, c.VectorIndex)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in [-1, 1], got %v", c.SimilarityThreshold)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	v, err := getInt(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// Bare integers are seconds.
		secs, intErr := strconv.Atoi(raw)
		if intErr != nil {
			return 0, fmt.Errorf("%s must be a duration: %w", key, err)
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}
