package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func supportsText(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".md"
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()

	testFiles := []string{
		"week1.md",
		"course/week2.txt",
		"course/deep/WEEK3.MD",
		"course/slides.pptx",
		".notes.txt",
	}
	for _, p := range testFiles {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(full, []byte("text"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	// Hidden directories are skipped entirely
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		t.Fatalf("Failed to create .git dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD.txt"), []byte("ref"), 0644); err != nil {
		t.Fatalf("Failed to create .git file: %v", err)
	}

	files, err := ScanDir(context.Background(), root, supportsText)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	var rel []string
	for _, f := range files {
		rel = append(rel, f.RelPath)
		if f.Root != root {
			t.Errorf("Root = %q, want %q", f.Root, root)
		}
		if _, err := os.Stat(f.AbsPath); err != nil {
			t.Errorf("AbsPath %q not readable: %v", f.AbsPath, err)
		}
	}
	sort.Strings(rel)

	want := []string{"course/deep/WEEK3.MD", "course/week2.txt", "week1.md"}
	if strings.Join(rel, ",") != strings.Join(want, ",") {
		t.Errorf("ScanDir() = %v, want %v", rel, want)
	}
}

func TestScanDir_MissingRoot(t *testing.T) {
	_, err := ScanDir(context.Background(), filepath.Join(t.TempDir(), "nope"), supportsText)
	if err == nil {
		t.Fatal("ScanDir() should fail for a missing root")
	}
}

func TestScanDir_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScanDir(ctx, t.TempDir(), supportsText)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ScanDir() error = %v, want context.Canceled", err)
	}
}
