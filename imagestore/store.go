// Package imagestore persists extracted raster content under
// content-addressed file names so identical images across pages and canvases
// share storage.
package imagestore

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Store writes image bytes once per distinct content hash. A Store with an
// empty directory keeps references in memory only, which is useful for
// callers that never render.
type Store struct {
	dir string

	mu   sync.Mutex
	refs map[string]string // ref -> absolute path ("" in memory-only mode)
}

// New creates a store rooted at dir. An empty dir selects memory-only mode.
func New(dir string) *Store {
	return &Store{dir: dir, refs: make(map[string]string)}
}

// Put stores data and returns its content-addressed reference, a file name of
// the form <hash>.<ext>. Identical bytes always map to the same reference.
func (s *Store) Put(data []byte, ext string) (string, error) {
	sum := blake2b.Sum256(data)
	ref := fmt.Sprintf("%s.%s", hex.EncodeToString(sum[:16]), ext)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[ref]; ok {
		return ref, nil
	}
	if s.dir == "" {
		s.refs[ref] = ""
		return ref, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write image %s: %w", ref, err)
		}
	}
	s.refs[ref] = path
	return ref, nil
}

// Path resolves a reference to its on-disk path. The second result is false
// for unknown references or memory-only stores.
func (s *Store) Path(ref string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.refs[ref]
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// Len reports how many distinct images the store has seen.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refs)
}
