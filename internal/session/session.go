// Package session holds the mutable state of one authoring session:
// the live bank, the exam registry, the pending generated candidates
// awaiting a keep/discard decision, and the generation machinery. It
// is constructed once at startup and flushed on shutdown; no state
// lives in package globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vnexam/examgen/internal/ai"
	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/exam"
	"github.com/vnexam/examgen/internal/generator"
	"github.com/vnexam/examgen/internal/question"
)

// ErrNoPendingCandidate means the referenced candidate id is not in
// the preview set (never generated, already kept, or discarded).
var ErrNoPendingCandidate = errors.New("no pending candidate with that id")

// Session owns all mutable state for one process lifetime.
type Session struct {
	Matrix  *curriculum.Matrix
	Bank    *bank.Bank
	Exams   *exam.Registry
	Batcher *generator.Batcher
	Offline *generator.Offline
	Router  *ai.Router

	mu      sync.Mutex
	pending map[string]question.Question
}

// New assembles a session from its loaded dependencies.
func New(m *curriculum.Matrix, b *bank.Bank, batcher *generator.Batcher, offline *generator.Offline, router *ai.Router) *Session {
	return &Session{
		Matrix:  m,
		Bank:    b,
		Exams:   exam.NewRegistry(b),
		Batcher: batcher,
		Offline: offline,
		Router:  router,
		pending: make(map[string]question.Question),
	}
}

// Request builds a generation request for the session's matrix
// coordinate, resolving display titles.
func (s *Session) Request(topicID, lessonID string, t question.Type, level question.Level) generator.Request {
	return generator.Request{
		Coordinate:  s.Matrix.Coordinate(topicID, lessonID),
		TopicTitle:  s.Matrix.TopicTitle(topicID),
		LessonTitle: s.Matrix.LessonTitle(topicID, lessonID),
		Type:        t,
		Level:       level,
	}
}

// Generate runs a batch and parks the resulting candidates in the
// preview set. Candidates are not in the bank until Keep.
func (s *Session) Generate(
	ctx context.Context,
	topicID, lessonID string,
	t question.Type,
	level question.Level,
	n int,
	useService bool,
	onProgress func(generator.Progress),
) ([]question.Question, []generator.Rejection, error) {
	lm := s.Matrix.LessonMatrix(topicID, lessonID)
	req := s.Request(topicID, lessonID, t, level)

	kept, rejections, err := s.Batcher.Generate(ctx, lm, req, n, useService, onProgress)
	if err != nil {
		return nil, rejections, err
	}

	s.mu.Lock()
	for _, q := range kept {
		s.pending[q.ID] = q
	}
	s.mu.Unlock()
	return kept, rejections, nil
}

// Pending returns the candidates awaiting a decision.
func (s *Session) Pending() []question.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]question.Question, 0, len(s.pending))
	for _, q := range s.pending {
		out = append(out, q)
	}
	return out
}

// Keep admits a pending candidate into the bank and removes it from
// the preview set. The bank write is synchronous; on success the
// record is durable.
func (s *Session) Keep(ctx context.Context, candidateID string) (question.Question, error) {
	s.mu.Lock()
	q, ok := s.pending[candidateID]
	s.mu.Unlock()
	if !ok {
		return question.Question{}, fmt.Errorf("%w: %s", ErrNoPendingCandidate, candidateID)
	}

	if err := s.Bank.Add(ctx, q); err != nil {
		return question.Question{}, err
	}

	s.mu.Lock()
	delete(s.pending, candidateID)
	s.mu.Unlock()
	return q, nil
}

// Discard drops a pending candidate without admitting it.
func (s *Session) Discard(candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[candidateID]; !ok {
		return fmt.Errorf("%w: %s", ErrNoPendingCandidate, candidateID)
	}
	delete(s.pending, candidateID)
	return nil
}

// Refresh replaces a pending candidate's content with a fresh offline
// variant, keeping its id. This mirrors the regenerate operation on
// bank records but acts on the preview set.
func (s *Session) Refresh(candidateID string) (question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.pending[candidateID]
	if !ok {
		return question.Question{}, fmt.Errorf("%w: %s", ErrNoPendingCandidate, candidateID)
	}

	req := generator.Request{
		Coordinate:  q.Coordinate,
		TopicTitle:  s.Matrix.TopicTitle(q.Coordinate.TopicID),
		LessonTitle: s.Matrix.LessonTitle(q.Coordinate.TopicID, q.Coordinate.LessonID),
		Type:        q.Type,
		Level:       q.Level,
	}
	q.Body = s.Offline.GenerateSeeded(req, generator.NewSeed())
	s.pending[candidateID] = q
	return q, nil
}

// Regenerate swaps the content of a bank record with a fresh offline
// variant, keeping id and coordinate. This is the only mutation of a
// kept question.
func (s *Session) Regenerate(ctx context.Context, id string) (question.Question, error) {
	q, ok := s.Bank.Get(id)
	if !ok {
		return question.Question{}, fmt.Errorf("%w: %s", bank.ErrNotFound, id)
	}

	req := generator.Request{
		Coordinate:  q.Coordinate,
		TopicTitle:  s.Matrix.TopicTitle(q.Coordinate.TopicID),
		LessonTitle: s.Matrix.LessonTitle(q.Coordinate.TopicID, q.Coordinate.LessonID),
		Type:        q.Type,
		Level:       q.Level,
	}
	body := s.Offline.GenerateSeeded(req, generator.NewSeed())

	candidate := q
	candidate.Body = body
	if ok, reason := question.Validate(candidate); !ok {
		return question.Question{}, fmt.Errorf("regenerated content rejected: %s", reason)
	}

	if err := s.Bank.ReplaceContent(ctx, id, body); err != nil {
		return question.Question{}, err
	}
	return candidate, nil
}

// APICalls reports how many external generation calls this session has
// attempted.
func (s *Session) APICalls() int64 {
	if s.Router == nil {
		return 0
	}
	return s.Router.Calls()
}

// Close flushes the bank a final time.
func (s *Session) Close(ctx context.Context) error {
	return s.Bank.Flush(ctx)
}
