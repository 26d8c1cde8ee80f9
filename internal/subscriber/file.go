package subscriber

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps subscribers in a plain text file, one ID per line.
// Every change rewrites the file through a temp file and rename.
type FileStore struct {
	mu   sync.Mutex
	path string
	ids  []string
}

// NewFileStore loads the store from path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	ids, err := readIDs(path)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	return &FileStore{path: path, ids: ids}, nil
}

func (s *FileStore) Add(userID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.ids, userID) {
		return false, nil
	}
	next := append(slices.Clone(s.ids), userID)
	if err := s.save(next); err != nil {
		return false, err
	}
	s.ids = next
	return true, nil
}

func (s *FileStore) Remove(userID string) (bool, error) {
	if userID == "" {
		return false, ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.ids, userID)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.ids), i, i+1)
	if err := s.save(next); err != nil {
		return false, err
	}
	s.ids = next
	return true, nil
}

func (s *FileStore) Contains(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.ids, userID), nil
}

func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids), nil
}

func (s *FileStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids), nil
}

func (s *FileStore) Close() error { return nil }

// save must be called with mu held.
func (s *FileStore) save(ids []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	content := strings.Join(ids, "\n")
	if len(ids) > 0 {
		content += "\n"
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write subscribers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace subscribers file: %w", err)
	}
	return nil
}
