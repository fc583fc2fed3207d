// Package quota derives coverage figures from the question bank and
// the curriculum matrix. Everything here is computed on demand; nothing
// is cached, because the bank is classroom-scale and a pass over it is
// cheap.
package quota

import (
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/question"
)

// UsedCounts tallies questions per difficulty level. Unknown levels
// are ignored; all known levels appear in the result, zero-valued when
// unused.
func UsedCounts(qs []question.Question) map[question.Level]int {
	counts := make(map[question.Level]int, len(question.Levels))
	for _, lvl := range question.Levels {
		counts[lvl] = 0
	}
	for _, q := range qs {
		if _, known := counts[q.Level]; known {
			counts[q.Level]++
		}
	}
	return counts
}

// TotalPoints sums the point values of a question list.
func TotalPoints(qs []question.Question) float64 {
	var total float64
	for _, q := range qs {
		total += q.Points
	}
	return total
}

// Remaining returns how many questions are still planned for a level
// given the used count. Never negative.
func Remaining(lm curriculum.LessonMatrix, level question.Level, used int) int {
	r := lm.Planned(level) - used
	if r < 0 {
		return 0
	}
	return r
}

// LevelStatus is the coverage of one difficulty level of one lesson.
type LevelStatus struct {
	Level     question.Level `json:"level"`
	Planned   int            `json:"planned"`
	Used      int            `json:"used"`
	Remaining int            `json:"remaining"`
}

// LessonStatus is the coverage rollup for one lesson.
type LessonStatus struct {
	TopicID    string        `json:"topic_id"`
	LessonID   string        `json:"lesson_id"`
	Levels     []LevelStatus `json:"levels"`
	UsedPoints float64       `json:"used_points"`
}

// LessonCoverage computes the per-level coverage of one lesson from
// the questions filed under its coordinate.
func LessonCoverage(lm curriculum.LessonMatrix, topicID, lessonID string, qs []question.Question) LessonStatus {
	used := UsedCounts(qs)
	st := LessonStatus{
		TopicID:    topicID,
		LessonID:   lessonID,
		UsedPoints: TotalPoints(qs),
	}
	for _, lvl := range question.Levels {
		st.Levels = append(st.Levels, LevelStatus{
			Level:     lvl,
			Planned:   lm.Planned(lvl),
			Used:      used[lvl],
			Remaining: Remaining(lm, lvl, used[lvl]),
		})
	}
	return st
}
