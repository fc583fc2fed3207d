package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vnexam/examgen/internal/ai"
	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/generator"
	"github.com/vnexam/examgen/internal/question"
	"github.com/vnexam/examgen/internal/session"
)

func testMatrix() *curriculum.Matrix {
	return curriculum.New(curriculum.Document{
		Grade: "3", Subject: "toan", Semester: "hk1",
		Topics: []curriculum.Topic{
			{
				TopicID: "so-hoc",
				Title:   "Số học",
				Lessons: []curriculum.Lesson{
					{
						LessonID: "cong-tru",
						Title:    "Phép cộng, phép trừ",
						Matrix: curriculum.LessonMatrix{
							AllowedTypes: []question.Type{question.MultipleChoice, question.FillBlank},
							PerLevel: map[question.Level]curriculum.Plan{
								question.Recognize: {Questions: 2},
							},
						},
					},
				},
			},
		},
	})
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	b, err := bank.Open(context.Background(), bank.NewMemoryStore())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	offline := generator.NewOffline()
	return session.New(testMatrix(), b, generator.NewBatcher(offline, nil, nil), offline, ai.NewRouter())
}

func generateOne(t *testing.T, s *session.Session) question.Question {
	t.Helper()
	kept, _, err := s.Generate(context.Background(), "so-hoc", "cong-tru",
		question.MultipleChoice, question.Recognize, 1, false, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("kept = %d, want 1", len(kept))
	}
	return kept[0]
}

func TestSession_GenerateParksCandidates(t *testing.T) {
	s := newTestSession(t)

	q := generateOne(t, s)

	if s.Bank.Len() != 0 {
		t.Error("candidates must not be in the bank before Keep")
	}
	pending := s.Pending()
	if len(pending) != 1 || pending[0].ID != q.ID {
		t.Errorf("Pending() = %v, want the generated candidate", pending)
	}
}

func TestSession_Generate_TypeNotAllowed(t *testing.T) {
	s := newTestSession(t)

	_, _, err := s.Generate(context.Background(), "so-hoc", "cong-tru",
		question.Essay, question.Recognize, 1, false, nil)
	if !errors.Is(err, generator.ErrTypeNotAllowed) {
		t.Fatalf("Generate() error = %v, want ErrTypeNotAllowed", err)
	}
}

func TestSession_Keep(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	q := generateOne(t, s)
	kept, err := s.Keep(ctx, q.ID)
	if err != nil {
		t.Fatalf("Keep() error = %v", err)
	}
	if kept.ID != q.ID {
		t.Errorf("Keep() = %q, want %q", kept.ID, q.ID)
	}
	if s.Bank.Len() != 1 {
		t.Errorf("Bank.Len() = %d, want 1", s.Bank.Len())
	}
	if len(s.Pending()) != 0 {
		t.Error("kept candidate must leave the preview set")
	}

	// A second Keep on the same id misses the preview set.
	if _, err := s.Keep(ctx, q.ID); !errors.Is(err, session.ErrNoPendingCandidate) {
		t.Fatalf("second Keep() error = %v, want ErrNoPendingCandidate", err)
	}
}

func TestSession_Discard(t *testing.T) {
	s := newTestSession(t)

	q := generateOne(t, s)
	if err := s.Discard(q.ID); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if len(s.Pending()) != 0 {
		t.Error("discarded candidate must leave the preview set")
	}
	if s.Bank.Len() != 0 {
		t.Error("discard must not touch the bank")
	}

	if err := s.Discard(q.ID); !errors.Is(err, session.ErrNoPendingCandidate) {
		t.Fatalf("second Discard() error = %v, want ErrNoPendingCandidate", err)
	}
}

func TestSession_Refresh(t *testing.T) {
	s := newTestSession(t)

	q := generateOne(t, s)
	refreshed, err := s.Refresh(q.ID)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.ID != q.ID {
		t.Errorf("Refresh() changed id from %q to %q", q.ID, refreshed.ID)
	}
	if refreshed.Provenance.Seed == q.Provenance.Seed && refreshed.Prompt == q.Prompt {
		t.Error("Refresh() should draw a fresh variant")
	}

	pending := s.Pending()
	if len(pending) != 1 || pending[0].Prompt != refreshed.Prompt {
		t.Error("preview set should hold the refreshed content")
	}
}

func TestSession_Regenerate(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	q := generateOne(t, s)
	if _, err := s.Keep(ctx, q.ID); err != nil {
		t.Fatalf("Keep() error = %v", err)
	}

	regenerated, err := s.Regenerate(ctx, q.ID)
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if regenerated.ID != q.ID || regenerated.Coordinate != q.Coordinate {
		t.Error("Regenerate() must keep id and coordinate")
	}

	stored, _ := s.Bank.Get(q.ID)
	if stored.Prompt != regenerated.Prompt {
		t.Error("bank should hold the regenerated content")
	}
}

func TestSession_Regenerate_NotFound(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Regenerate(context.Background(), "Q-missing")
	if !errors.Is(err, bank.ErrNotFound) {
		t.Fatalf("Regenerate() error = %v, want ErrNotFound", err)
	}
}

func TestSession_APICalls(t *testing.T) {
	s := newTestSession(t)
	if s.APICalls() != 0 {
		t.Errorf("APICalls() = %d, want 0 for offline-only session", s.APICalls())
	}
}
