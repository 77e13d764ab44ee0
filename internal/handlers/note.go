package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"learnloop/internal/contextutil"
	"learnloop/internal/storage"
)

// DocumentReader loads a stored document and its text.
type DocumentReader interface {
	GetDocument(ctx context.Context, id string) (*storage.DocumentRecord, error)
	DocumentText(ctx context.Context, id string) (string, error)
}

// DocumentViewHandler serves a stored document as an HTML page. Markdown uploads are
// rendered from the raw file; everything else shows the extracted text.
type DocumentViewHandler struct {
	docs     DocumentReader
	markdown goldmark.Markdown
	template *template.Template
	logger   *slog.Logger
}

// documentPageData holds template data for rendered document pages.
type documentPageData struct {
	Title      string
	ID         string
	ChunkCount int
	HTML       template.HTML
	Text       string
}

var documentPage = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 860px;
      line-height: 1.6;
    }
    .meta {
      color: #64748b;
      font-size: 0.9rem;
    }
    pre {
      white-space: pre-wrap;
      background: #f1f5f9;
      padding: 1rem;
      border-radius: 8px;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">Document {{.ID}} &middot; {{.ChunkCount}} chunks</p>
  </header>
  <article>{{if .HTML}}{{.HTML}}{{else}}<pre>{{.Text}}</pre>{{end}}</article>
</body>
</html>`))

// NewDocumentViewHandler creates a new DocumentViewHandler.
func NewDocumentViewHandler(docs DocumentReader) *DocumentViewHandler {
	return &DocumentViewHandler{
		docs: docs,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: documentPage,
		logger:   slog.Default(),
	}
}

// ServeHTTP renders the requested document.
func (h *DocumentViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerOr(ctx, h.logger)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	doc, err := h.docs.GetDocument(ctx, id)
	if err != nil {
		handleError(ctx, w, err, "Failed to load document")
		return
	}

	page := documentPageData{
		Title:      inferTitle(doc.Filename),
		ID:         doc.ID,
		ChunkCount: doc.ChunkCount,
	}

	if isMarkdown(doc.Filename) && doc.FilePath != "" {
		html, err := h.renderFile(doc.FilePath)
		if err == nil {
			page.HTML = template.HTML(html)
		} else {
			logger.WarnContext(ctx, "failed to render markdown, showing extracted text", "document_id", id, "error", err)
		}
	}

	if page.HTML == "" {
		text, err := h.docs.DocumentText(ctx, id)
		if err != nil {
			handleError(ctx, w, err, "Failed to load document text")
			return
		}
		page.Text = text
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, page); err != nil {
		logger.ErrorContext(ctx, "failed to execute document template", "document_id", id, "error", err)
	}
}

func (h *DocumentViewHandler) renderFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read raw file: %w", err)
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert(data, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}

func inferTitle(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "" {
		return "Document"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
