// Package extract turns uploaded files into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Extractor turns the raw bytes of a file into plain text.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
}

// Registry dispatches on lower-cased file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Extractor)}
}

// Default returns a registry for .txt, .md, .markdown, .docx and .pdf.
// PDF text comes from the pdftotext tool run through runner.
func Default(runner CommandRunner) *Registry {
	r := NewRegistry()
	r.Register(NewPlainText(), ".txt", ".text")
	r.Register(NewMarkdown(), ".md", ".markdown")
	r.Register(NewDocx(), ".docx")
	r.Register(NewPDF(runner), ".pdf")
	return r
}

// Register maps each extension to e.
func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract picks the extractor for filename and runs it on content.
func (r *Registry) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	text, err := e.Extract(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to extract %s: %w", filepath.Base(filename), err)
	}
	return text, nil
}

// ExtractFile reads path and extracts its text.
func (r *Registry) ExtractFile(ctx context.Context, path string) (string, error) {
	if !r.Supports(path) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return r.Extract(ctx, path, content)
}
