// Package scratch stages uploaded files under per-request unique keys.
// Concurrent uploads of files with the same name must never read each
// other's bytes, so every request gets its own keyed directory instead of
// a shared upload folder.
package scratch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retail-lens/backend/pkg/logger"
)

type Store struct {
	root string
}

type Upload struct {
	Key  string
	Path string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes src into a fresh uuid-keyed directory and returns the handle
// the caller later passes to Remove.
func (s *Store) Save(filename string, src io.Reader) (*Upload, error) {
	key := uuid.NewString()
	dir := filepath.Join(s.root, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	// Base name only: the client-supplied filename must not escape the
	// keyed directory.
	path := filepath.Join(dir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	logger.Debug("upload staged", zap.String("key", key), zap.String("path", path))
	return &Upload{Key: key, Path: path}, nil
}

// Remove deletes the keyed directory and everything in it.
func (s *Store) Remove(key string) error {
	if key == "" || key != filepath.Base(key) {
		return fmt.Errorf("invalid scratch key %q", key)
	}
	return os.RemoveAll(filepath.Join(s.root, key))
}
