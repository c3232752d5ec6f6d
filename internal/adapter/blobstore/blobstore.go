// Package blobstore persists uploaded PDF files on disk. Writes go to a
// temp file in the target directory and are renamed into place, so a
// reader never observes a partially written blob and a crash mid-write
// leaves only an orphaned temp file.
package blobstore

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pdfqa/internal/domain/entity"
)

type Store struct {
	dir string
}

// New creates a blob store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the reader's content under a collision-free name derived
// from originalName and returns the final path and byte size.
func (s *Store) Save(r io.Reader, originalName string) (string, int64, error) {
	if strings.TrimSpace(originalName) == "" {
		return "", 0, entity.NewValidationError("filename is required")
	}
	if !strings.HasSuffix(strings.ToLower(originalName), ".pdf") {
		return "", 0, entity.NewValidationError("only PDF files are allowed")
	}

	finalPath := filepath.Join(s.dir, s.uniqueName(originalName))
	tmpPath := filepath.Join(s.dir, ".tmp-"+uuid.NewString())

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to finalize upload: %w", err)
	}

	return finalPath, size, nil
}

// Delete removes a stored blob. Missing files are not an error.
func (s *Store) Delete(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("could not delete blob %s: %v", path, err)
	}
}

// uniqueName keeps the original stem and extension when free, otherwise
// appends a short random suffix.
func (s *Store) uniqueName(originalName string) string {
	base := filepath.Base(originalName)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".pdf"
	}

	candidate := stem + ext
	if _, err := os.Stat(filepath.Join(s.dir, candidate)); os.IsNotExist(err) {
		return candidate
	}
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:6], ext)
}
