// Package bank owns the durable collection of accepted questions.
package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vnexam/examgen/internal/question"
)

// Store persists the full question collection. The in-memory bank is
// the source of truth during a session; the store is rewritten in full
// on every successful mutation so a crash after an add cannot lose the
// record.
type Store interface {
	LoadAll(ctx context.Context) ([]question.Question, error)
	Save(ctx context.Context, qs []question.Question) error
}

// MemoryStore keeps questions in memory only. Used in tests and as the
// no-persistence fallback.
type MemoryStore struct {
	mu sync.Mutex
	qs []question.Question
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadAll(_ context.Context) ([]question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]question.Question(nil), s.qs...), nil
}

func (s *MemoryStore) Save(_ context.Context, qs []question.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qs = append([]question.Question(nil), qs...)
	return nil
}

// FileStore persists the collection as a single JSON document. Writes
// go through a temp file and rename so readers never observe a partial
// document.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. A missing file is
// an empty bank, not an error.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) LoadAll(_ context.Context) ([]question.Question, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading bank file: %w", err)
	}

	var qs []question.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("parsing bank file: %w", err)
	}
	return qs, nil
}

func (s *FileStore) Save(_ context.Context, qs []question.Question) error {
	if qs == nil {
		qs = []question.Question{}
	}
	data, err := json.MarshalIndent(qs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bank: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating bank directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bank-*.json")
	if err != nil {
		return fmt.Errorf("creating temp bank file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing bank file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing bank file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing bank file: %w", err)
	}
	return nil
}
