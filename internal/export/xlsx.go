package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/quota"
)

// CoverageXLSX produces a workbook with one row per (lesson, level):
// planned, used and remaining question counts plus the point total per
// lesson, derived from the live bank.
func CoverageXLSX(m *curriculum.Matrix, b *bank.Bank) ([]byte, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"topic_id", "topic", "lesson_id", "lesson", "level", "planned", "used", "remaining", "lesson_points"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, topic := range m.Topics() {
		for _, lesson := range topic.Lessons {
			coord := m.Coordinate(topic.TopicID, lesson.LessonID)
			lm := m.LessonMatrix(topic.TopicID, lesson.LessonID)
			st := quota.LessonCoverage(lm, topic.TopicID, lesson.LessonID, b.Query(coord))

			for _, ls := range st.Levels {
				values := []any{
					topic.TopicID,
					topic.Title,
					lesson.LessonID,
					lesson.Title,
					ls.Level.Label(),
					ls.Planned,
					ls.Used,
					ls.Remaining,
					st.UsedPoints,
				}
				for col, v := range values {
					cell, _ := excelize.CoordinatesToCellName(col+1, row)
					_ = f.SetCellValue(sheet, cell, v)
				}
				row++
			}
		}
	}
	_ = f.SetColWidth(sheet, "A", "I", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
