// Package indexstore persists serialized vector indexes on disk, one
// directory per document id. A half-written artifact is never visible:
// the artifact is written to a temp file and renamed into place, and a
// failed build removes the whole directory.
package indexstore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"pdfqa/internal/vectorindex"
)

const artifactName = "vectorstore.bin"

type Store struct {
	root string
}

// New creates an index store rooted at root, creating it if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Dir returns the index directory for a document id.
func (s *Store) Dir(documentID int64) string {
	return filepath.Join(s.root, strconv.FormatInt(documentID, 10))
}

// Save serializes the index under the document's directory.
func (s *Store) Save(documentID int64, idx *vectorindex.Index) error {
	data, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}

	dir := s.Dir(documentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmpPath := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write index artifact: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, artifactName)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize index artifact: %w", err)
	}
	return nil
}

// Load returns the document's index, or (nil, nil) when no usable
// artifact exists. A corrupt artifact is indistinguishable from a missing
// one to callers: both mean "not queryable".
func (s *Store) Load(documentID int64) (*vectorindex.Index, error) {
	path := filepath.Join(s.Dir(documentID), artifactName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		log.Printf("failed to read index for document %d: %v", documentID, err)
		return nil, nil
	}

	var idx vectorindex.Index
	if err := idx.UnmarshalBinary(data); err != nil {
		log.Printf("failed to load index for document %d: %v", documentID, err)
		return nil, nil
	}
	return &idx, nil
}

// Delete removes the document's index directory. Best effort.
func (s *Store) Delete(documentID int64) {
	if err := os.RemoveAll(s.Dir(documentID)); err != nil {
		log.Printf("could not delete index dir for document %d: %v", documentID, err)
	}
}
