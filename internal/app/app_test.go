package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"learnloop/internal/config"
	apihttp "learnloop/internal/http"
	"learnloop/internal/mastery"
	"learnloop/internal/parser"
	"learnloop/internal/service"
	"learnloop/internal/storage"
)

// fakeOllama answers the embed, generate and tags endpoints. Texts mentioning cells
// embed along the first axis, everything else along the second.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embed":
			var req struct {
				Input []string `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad embed request: %v", err)
			}
			vectors := make([][]float64, len(req.Input))
			for i, text := range req.Input {
				if strings.Contains(strings.ToLower(text), "cell") {
					vectors[i] = []float64{1, 0, 0}
				} else {
					vectors[i] = []float64{0, 1, 0}
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": vectors})
		case "/api/generate":
			var req struct {
				Prompt string `json:"prompt"`
				System string `json:"system"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad generate request: %v", err)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"response": generateReply(req.System), "done": true})
		case "/api/tags":
			_ = json.NewEncoder(w).Encode(map[string]any{"models": []map[string]string{{"name": "gemma3:4b"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func generateReply(system string) string {
	switch {
	case strings.Contains(system, "extracting key concepts"):
		return "```json\n{\"concepts\": [{\"main\": \"Cell Biology\", \"sub\": \"Mitosis\", \"description\": \"How cells divide\"},]}\n```"
	case strings.Contains(system, "quiz questions"):
		return `Here is your quiz: {"questions": [{"question": "What does mitosis produce?", "type": "multiple_choice",
			"options": ["A) Two cells", "B) One cell", "C) Proteins", "D) Energy"], "correct": 0,
			"correct_answer": "Two cells", "explanation": "Mitosis splits one cell into two."}]}`
	default:
		return "  Cells divide by mitosis.  "
	}
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LLMProvider:         config.ProviderOllama,
		LLMBaseURL:          baseURL,
		LLMModel:            "gemma3:4b",
		LLMTimeout:          5 * time.Second,
		EmbeddingProvider:   config.ProviderOllama,
		EmbeddingBaseURL:    baseURL,
		EmbeddingModelName:  "all-minilm",
		EmbeddingSize:       3,
		EmbeddingBatchSize:  8,
		EmbeddingNormalize:  true,
		DBPath:              filepath.Join(dir, "learnloop.db"),
		UploadDir:           filepath.Join(dir, "uploads"),
		ChunkSize:           200,
		ChunkOverlap:        40,
		SimilarityThreshold: 0.3,
		VectorIndex:         config.IndexSQLite,
		LogLevel:            slog.LevelInfo,
		LogFormat:           "text",
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	srv := fakeOllama(t)
	a, err := New(context.Background(), testConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_SQLiteIndex(t *testing.T) {
	a := newTestApp(t)

	if a.Pipeline == nil || a.Engine == nil || a.Learning == nil || a.Backend == nil || a.Embedder == nil {
		t.Fatalf("New() left components unset: %+v", a)
	}
	if a.Ollama == nil {
		t.Error("Ollama client should be set for the ollama provider")
	}
	if err := a.DB.PingContext(context.Background()); err != nil {
		t.Errorf("database not reachable: %v", err)
	}
}

func TestNew_OpenAIProvider(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.LLMProvider = config.ProviderOpenAI
	cfg.EmbeddingProvider = config.ProviderOpenAI

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.Ollama != nil {
		t.Error("Ollama client should be nil for the openai provider")
	}
}

func TestNew_InvalidDatabasePath(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.DBPath = filepath.Join(t.TempDir(), "missing", "dir", "db.sqlite")

	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New() should fail when the database cannot be opened")
	}
}

func TestApp_VerifyEmbedder(t *testing.T) {
	a := newTestApp(t)
	if err := a.VerifyEmbedder(context.Background()); err != nil {
		t.Errorf("VerifyEmbedder() error = %v", err)
	}

	a.Config.EmbeddingSize = 4
	wrong := newEmbedder(a.Config)
	a.Embedder = wrong
	if err := a.VerifyEmbedder(context.Background()); err == nil {
		t.Error("VerifyEmbedder() should reject a size mismatch")
	}
}

func TestApp_EndToEnd(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	bio, err := a.Pipeline.Ingest(ctx, []byte("Cells divide by mitosis. Each cell copies its DNA first."), "bio.txt")
	if err != nil || bio.Status != storage.StatusProcessed {
		t.Fatalf("Ingest(bio) = %+v, %v", bio, err)
	}
	astro, err := a.Pipeline.Ingest(ctx, []byte("Stars burn hydrogen into helium."), "astro.md")
	if err != nil || astro.Status != storage.StatusProcessed {
		t.Fatalf("Ingest(astro) = %+v, %v", astro, err)
	}

	results, err := a.Engine.Search(ctx, "how does a cell divide", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].DocumentID != bio.DocumentID {
		t.Fatalf("Search() = %+v, want only the biology chunk", results)
	}

	answer, err := a.Engine.Ask(ctx, "How do cells divide?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Answer != "Cells divide by mitosis." || len(answer.Sources) != 1 {
		t.Errorf("Ask() = %+v", answer)
	}

	extracted, err := a.Learning.ExtractAndStoreConcepts(ctx, bio.DocumentID)
	if err != nil {
		t.Fatalf("ExtractAndStoreConcepts() error = %v", err)
	}
	if extracted.Inserted != 1 || extracted.Stage != parser.StageCommaRepair {
		t.Errorf("ExtractAndStoreConcepts() = %+v", extracted)
	}

	quiz, err := a.Learning.GenerateQuiz(ctx, service.QuizRequest{Concept: "Cell Biology", Level: mastery.NotStarted, NumQuestions: 1})
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Options[0] != "Two cells" || quiz.Stage != parser.StageBraceExtract {
		t.Fatalf("GenerateQuiz() = %+v", quiz)
	}

	idx := 0
	graded, err := a.Learning.GradeQuiz(ctx, service.GradeRequest{
		Concept:   "Cell Biology",
		Questions: quiz.Questions,
		Answers:   []service.Answer{{Index: &idx}},
	})
	if err != nil {
		t.Fatalf("GradeQuiz() error = %v", err)
	}
	if graded.Grade.Score != 1 || graded.Mastery == nil || graded.Mastery.State.Level != mastery.Recall {
		t.Errorf("GradeQuiz() = %+v", graded)
	}

	groups, err := a.Learning.ListConcepts(ctx)
	if err != nil {
		t.Fatalf("ListConcepts() error = %v", err)
	}
	if len(groups) != 1 || groups[0].State.Level != mastery.Recall {
		t.Errorf("ListConcepts() = %+v", groups)
	}
}

func TestApp_RouterDeps(t *testing.T) {
	a := newTestApp(t)
	router := apihttp.NewRouter(a.RouterDeps())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Status string   `json:"status"`
		Models []string `json:"models"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || len(resp.Models) != 1 {
		t.Errorf("health = %+v", resp)
	}
}

func TestApp_Close(t *testing.T) {
	srv := fakeOllama(t)
	a, err := New(context.Background(), testConfig(t, srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
