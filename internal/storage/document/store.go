// Package document persists the agent's memory as one JSON document. Every
// mutation rewrites the whole file; the write goes to a temp file first and
// is renamed into place so a crash can never leave a half-written document.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/log"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the memory document. A missing or unreadable or corrupt file
// degrades to an empty document, never an error that would block startup.
func (s *Store) Load(ctx context.Context) (core.MemoryDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.FromCtx(ctx).Warn().Err(err).Str("path", s.path).Msg("memory document unreadable, starting empty")
		}
		return core.EmptyMemoryDocument(), nil
	}

	var doc core.MemoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("path", s.path).Msg("memory document corrupt, starting empty")
		return core.EmptyMemoryDocument(), nil
	}

	if doc.Version == 0 {
		doc.Version = core.MemorySchemaVersion
	}
	return doc, nil
}

// Save replaces the document atomically.
func (s *Store) Save(ctx context.Context, doc core.MemoryDocument) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".memory-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace memory document: %w", err)
	}
	return nil
}

func (s *Store) Path() string {
	return s.path
}
