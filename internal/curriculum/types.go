// Package curriculum loads the read-only curriculum matrix and answers
// lookups for topics, lessons and per-lesson quota matrices.
package curriculum

import "github.com/vnexam/examgen/internal/question"

// Plan is the planned question count for one difficulty level of a
// lesson.
type Plan struct {
	Questions int `yaml:"questions" json:"questions"`
}

// LessonMatrix holds the TT27 matrix for one lesson: which question
// types are allowed and how many questions are planned per level.
type LessonMatrix struct {
	AllowedTypes []question.Type         `yaml:"allowed_types" json:"allowed_types"`
	PerLevel     map[question.Level]Plan `yaml:"levels" json:"levels"`
}

// Empty reports whether the matrix carries no data (unknown ids look
// up to an empty matrix, not an error).
func (m LessonMatrix) Empty() bool {
	return len(m.AllowedTypes) == 0 && len(m.PerLevel) == 0
}

// Planned returns the planned question count for a level, zero when
// the level is absent.
func (m LessonMatrix) Planned(level question.Level) int {
	return m.PerLevel[level].Questions
}

// AllowsType reports whether the lesson matrix permits the question
// type. An empty matrix permits nothing.
func (m LessonMatrix) AllowsType(t question.Type) bool {
	for _, a := range m.AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Lesson is one teaching unit within a topic.
type Lesson struct {
	LessonID string       `yaml:"lesson_id" json:"lesson_id"`
	Title    string       `yaml:"title" json:"title"`
	Matrix   LessonMatrix `yaml:"matrix" json:"matrix"`
}

// Topic is an ordered group of lessons (a textbook chapter).
type Topic struct {
	TopicID string   `yaml:"topic_id" json:"topic_id"`
	Title   string   `yaml:"title" json:"title"`
	Lessons []Lesson `yaml:"lessons" json:"lessons"`
}

// Document is the on-disk shape of the matrix file.
type Document struct {
	Grade    string  `yaml:"grade"`
	Subject  string  `yaml:"subject"`
	Semester string  `yaml:"semester"`
	Topics   []Topic `yaml:"topics"`
}
