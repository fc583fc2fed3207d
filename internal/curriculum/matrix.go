package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vnexam/examgen/internal/question"
)

// Matrix is the loaded curriculum matrix. Source data is read-only;
// planned counts may be overridden for the lifetime of the process
// without touching the matrix file.
type Matrix struct {
	doc Document

	mu        sync.RWMutex
	overrides map[overrideKey]int
}

type overrideKey struct {
	topicID  string
	lessonID string
	level    question.Level
}

// Load reads the matrix document from a YAML file.
func Load(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading matrix: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing matrix: %w", err)
	}

	m := New(doc)
	slog.Info("curriculum matrix loaded", "path", path, "topics", len(doc.Topics))
	return m, nil
}

// New wraps an already-parsed document.
func New(doc Document) *Matrix {
	return &Matrix{
		doc:       doc,
		overrides: make(map[overrideKey]int),
	}
}

// Grade returns the grade the matrix covers.
func (m *Matrix) Grade() string { return m.doc.Grade }

// Subject returns the subject the matrix covers.
func (m *Matrix) Subject() string { return m.doc.Subject }

// Semester returns the semester the matrix covers.
func (m *Matrix) Semester() string { return m.doc.Semester }

// Coordinate builds the full coordinate for a (topic, lesson) pair
// within this matrix.
func (m *Matrix) Coordinate(topicID, lessonID string) question.Coordinate {
	return question.Coordinate{
		Grade:    m.doc.Grade,
		Subject:  m.doc.Subject,
		Semester: m.doc.Semester,
		TopicID:  topicID,
		LessonID: lessonID,
	}
}

// Topics returns the topics in document order.
func (m *Matrix) Topics() []Topic {
	out := make([]Topic, len(m.doc.Topics))
	copy(out, m.doc.Topics)
	return out
}

// Lessons returns the lessons of a topic in document order, or an
// empty slice when the topic id is unknown.
func (m *Matrix) Lessons(topicID string) []Lesson {
	for _, t := range m.doc.Topics {
		if t.TopicID == topicID {
			out := make([]Lesson, len(t.Lessons))
			copy(out, t.Lessons)
			return out
		}
	}
	return nil
}

// TopicTitle returns the display title for a topic id, falling back to
// the id itself.
func (m *Matrix) TopicTitle(topicID string) string {
	for _, t := range m.doc.Topics {
		if t.TopicID == topicID {
			return t.Title
		}
	}
	return topicID
}

// LessonTitle returns the display title for a lesson id, falling back
// to the id itself.
func (m *Matrix) LessonTitle(topicID, lessonID string) string {
	for _, l := range m.Lessons(topicID) {
		if l.LessonID == lessonID {
			return l.Title
		}
	}
	return lessonID
}

// LessonMatrix returns the quota matrix for a lesson with any session
// overrides applied, or an empty matrix when the ids are unknown.
func (m *Matrix) LessonMatrix(topicID, lessonID string) LessonMatrix {
	for _, t := range m.doc.Topics {
		if t.TopicID != topicID {
			continue
		}
		for _, l := range t.Lessons {
			if l.LessonID != lessonID {
				continue
			}
			return m.withOverrides(topicID, lessonID, l.Matrix)
		}
	}
	return LessonMatrix{}
}

func (m *Matrix) withOverrides(topicID, lessonID string, lm LessonMatrix) LessonMatrix {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := LessonMatrix{
		AllowedTypes: append([]question.Type(nil), lm.AllowedTypes...),
		PerLevel:     make(map[question.Level]Plan, len(lm.PerLevel)),
	}
	for lvl, p := range lm.PerLevel {
		out.PerLevel[lvl] = p
	}
	for key, n := range m.overrides {
		if key.topicID == topicID && key.lessonID == lessonID {
			out.PerLevel[key.level] = Plan{Questions: n}
		}
	}
	return out
}

// SetPlanned overrides the planned question count for one level of one
// lesson for the lifetime of the process. The matrix file is never
// rewritten. Negative counts are clamped to zero.
func (m *Matrix) SetPlanned(topicID, lessonID string, level question.Level, n int) {
	if n < 0 {
		n = 0
	}
	m.mu.Lock()
	m.overrides[overrideKey{topicID, lessonID, level}] = n
	m.mu.Unlock()
}

// ResetPlanned discards all session quota overrides.
func (m *Matrix) ResetPlanned() {
	m.mu.Lock()
	m.overrides = make(map[overrideKey]int)
	m.mu.Unlock()
}
