// Package exam assembles ordered selections of bank questions into
// exam documents. An exam holds question ids, not copies; export
// resolves them against the live bank.
package exam

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/question"
	"github.com/vnexam/examgen/internal/quota"
)

var (
	// ErrUnresolvedReference means a selected question id is absent
	// from the bank. The operation aborts; no partial exam is created.
	ErrUnresolvedReference = errors.New("question id not in bank")
	// ErrNoQuestions means an exam was requested with an empty
	// selection.
	ErrNoQuestions = errors.New("no questions selected")
	// ErrNotFound means the exam id does not resolve.
	ErrNotFound = errors.New("exam not found")
)

// Header carries the free-form presentation fields printed at the top
// of an exported exam.
type Header struct {
	School   string `json:"school"`
	Grade    string `json:"grade"`
	Subject  string `json:"subject"`
	Semester string `json:"semester"`
	Time     string `json:"time"`
	Note     string `json:"note"`
}

// Exam is an immutable, ordered selection of question ids plus
// presentation metadata. TotalPoints is a build-time snapshot: later
// regenerates of the referenced questions do not change it.
type Exam struct {
	ID          string              `json:"exam_id"`
	Coordinate  question.Coordinate `json:"coordinate"`
	QuestionIDs []string            `json:"question_ids"`
	Header      Header              `json:"header"`
	TotalPoints float64             `json:"total_points"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Registry accumulates exams for the life of the process. Exams are
// not persisted; only the question bank is durable.
type Registry struct {
	bank *bank.Bank

	mu    sync.RWMutex
	exams []Exam
	now   func() time.Time
}

// NewRegistry creates an exam registry over a bank.
func NewRegistry(b *bank.Bank) *Registry {
	return &Registry{
		bank: b,
		now:  time.Now,
	}
}

// Build assembles an exam from a selection of bank question ids. Every
// id must resolve; a single miss fails the whole build with
// ErrUnresolvedReference and nothing is appended.
func (r *Registry) Build(id string, coord question.Coordinate, selectedIDs []string, header Header) (Exam, error) {
	if len(selectedIDs) == 0 {
		return Exam{}, ErrNoQuestions
	}

	qs := make([]question.Question, 0, len(selectedIDs))
	for _, qid := range selectedIDs {
		q, ok := r.bank.Get(qid)
		if !ok {
			return Exam{}, fmt.Errorf("%w: %s", ErrUnresolvedReference, qid)
		}
		qs = append(qs, q)
	}

	ex := Exam{
		ID:          id,
		Coordinate:  coord,
		QuestionIDs: append([]string(nil), selectedIDs...),
		Header:      header,
		TotalPoints: quota.TotalPoints(qs),
		CreatedAt:   r.now().UTC(),
	}

	r.mu.Lock()
	r.exams = append(r.exams, ex)
	r.mu.Unlock()
	return ex, nil
}

// List returns the exams built so far, oldest first.
func (r *Registry) List() []Exam {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Exam(nil), r.exams...)
}

// Get returns an exam by id.
func (r *Registry) Get(id string) (Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ex := range r.exams {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exam{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Resolve looks up the exam's questions in the live bank, in exam
// order. Any missing id fails with ErrUnresolvedReference; export must
// not silently drop questions.
func (r *Registry) Resolve(ex Exam) ([]question.Question, error) {
	qs := make([]question.Question, 0, len(ex.QuestionIDs))
	for _, qid := range ex.QuestionIDs {
		q, ok := r.bank.Get(qid)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedReference, qid)
		}
		qs = append(qs, q)
	}
	return qs, nil
}
