package bank

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vnexam/examgen/internal/question"
)

var (
	// ErrDuplicateID is returned by Add when a question with the same
	// id already exists in the bank.
	ErrDuplicateID = errors.New("duplicate question id")
	// ErrNotFound is returned when an id does not resolve.
	ErrNotFound = errors.New("question not found")
)

// Bank is the session's question collection. Records are appended by
// Add, never deleted; the only in-place mutation is ReplaceContent,
// which swaps a record's content fields while keeping its id and
// coordinate. Every successful mutation is persisted synchronously.
type Bank struct {
	store Store

	mu    sync.RWMutex
	qs    []question.Question
	index map[string]int
}

// Open loads the bank from its store.
func Open(ctx context.Context, store Store) (*Bank, error) {
	qs, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading bank: %w", err)
	}

	b := &Bank{
		store: store,
		qs:    qs,
		index: make(map[string]int, len(qs)),
	}
	for i, q := range qs {
		if _, dup := b.index[q.ID]; dup {
			return nil, fmt.Errorf("%w in bank file: %s", ErrDuplicateID, q.ID)
		}
		b.index[q.ID] = i
	}
	return b, nil
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.qs)
}

// Add appends an already-validated question and persists the full
// collection before returning. Admission validation is the caller's
// responsibility; Add only guards id uniqueness.
func (b *Bank) Add(ctx context.Context, q question.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, dup := b.index[q.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, q.ID)
	}

	next := append(append([]question.Question(nil), b.qs...), q)
	if err := b.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persisting bank: %w", err)
	}

	b.qs = next
	b.index[q.ID] = len(next) - 1
	return nil
}

// Get returns the question with the given id.
func (b *Bank) Get(id string) (question.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.index[id]
	if !ok {
		return question.Question{}, false
	}
	return b.qs[i], true
}

// Query returns the questions filed under a coordinate in insertion
// order. Two calls without an intervening Add yield identical results.
func (b *Bank) Query(coord question.Coordinate) []question.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []question.Question
	for _, q := range b.qs {
		if q.Coordinate == coord {
			out = append(out, q)
		}
	}
	return out
}

// All returns every question in insertion order.
func (b *Bank) All() []question.Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]question.Question(nil), b.qs...)
}

// ReplaceContent swaps the content fields of an existing record with a
// freshly generated body, keeping id, coordinate, type, level and
// points. This is the regenerate operation; it is the only in-place
// mutation the bank exposes.
func (b *Bank) ReplaceContent(ctx context.Context, id string, body question.Body) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := append([]question.Question(nil), b.qs...)
	next[i].Body = body
	if err := b.store.Save(ctx, next); err != nil {
		return fmt.Errorf("persisting bank: %w", err)
	}

	b.qs = next
	return nil
}

// Flush rewrites the store from the current in-memory state. Called on
// session teardown as a final safety write.
func (b *Bank) Flush(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.store.Save(ctx, b.qs)
}
