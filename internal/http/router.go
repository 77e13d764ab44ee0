package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"learnloop/internal/handlers"
	"learnloop/internal/llm"
	"learnloop/internal/rag"
	"learnloop/internal/service"
)

// Corpus is the document store surface the API needs.
type Corpus interface {
	handlers.DocumentIndexer
	handlers.DocumentReader
	handlers.IndexSyncer
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Corpus      Corpus
	RAGEngine   rag.Engine
	Learning    service.LearningService
	DB          handlers.Pinger
	Backend     llm.Backend
	AutoExtract bool
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Add CORS middleware
	r.Use(CORS)

	documents := handlers.NewDocumentsHandler(deps.Corpus, deps.Learning, deps.AutoExtract)
	concepts := handlers.NewConceptsHandler(deps.Learning)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documents.Upload)
			r.Get("/", documents.List)
			r.Get("/{id}/chunks", documents.Chunks)
			r.Method(http.MethodGet, "/{id}/view", handlers.NewDocumentViewHandler(deps.Corpus))
			r.Delete("/{id}", documents.Delete)
		})

		r.Method(http.MethodPost, "/search", handlers.NewSearchHandler(deps.RAGEngine))
		r.Method(http.MethodPost, "/ask", handlers.NewAskHandler(deps.RAGEngine))

		r.Get("/concepts", concepts.List)
		r.Post("/concepts/extract", concepts.Extract)
		r.Post("/concepts/mastery", concepts.RecordMastery)
		r.Post("/quiz", concepts.Quiz)
		r.Post("/quiz/grade", concepts.Grade)

		r.Get("/stats", documents.Stats)
		r.Method(http.MethodPost, "/index", handlers.NewIndexHandler(deps.Corpus))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.DB, deps.Backend))
	})

	return r
}
