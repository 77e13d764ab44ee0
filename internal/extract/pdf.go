package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CommandRunner runs an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// PDF extracts text with the poppler pdftotext tool.
type PDF struct {
	runner  CommandRunner
	timeout time.Duration
}

// NewPDF creates a PDF extractor. A nil runner uses ExecRunner.
func NewPDF(runner CommandRunner) *PDF {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PDF{runner: runner, timeout: 2 * time.Minute}
}

// Extract writes content to a temp file and runs pdftotext on it.
func (p *PDF) Extract(ctx context.Context, content []byte) (string, error) {
	if len(content) < 5 || string(content[:5]) != "%PDF-" {
		return "", fmt.Errorf("%w: missing PDF header", ErrInvalidDocument)
	}

	tmpDir, err := os.MkdirTemp("", "learnloop_pdf_*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	inPath := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(inPath, content, 0600); err != nil {
		return "", fmt.Errorf("failed to write temp pdf: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runner.Run(callCtx, "pdftotext", "-enc", "UTF-8", "-q", inPath, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	// Form feeds separate pages.
	text := strings.ReplaceAll(string(out), "\f", "\n")
	return strings.TrimSpace(text), nil
}
