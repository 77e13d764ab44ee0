package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a supported file found during a directory scan.
type ScannedFile struct {
	Root    string // Directory the scan started from
	RelPath string // Relative path from Root, forward slashes (e.g., "course/week1.pdf")
	AbsPath string // Path usable with os.ReadFile
}

// ScanDir walks root and returns every file whose name supports accepts.
// Hidden directories (".git", ".obsidian", ...) are skipped.
func ScanDir(ctx context.Context, root string, supports func(name string) bool) ([]ScannedFile, error) {
	var scannedFiles []ScannedFile

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || !supports(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scannedFiles = append(scannedFiles, ScannedFile{
			Root:    root,
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return scannedFiles, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return scannedFiles, nil
}
