package export_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/export"
	"github.com/vnexam/examgen/internal/question"
)

func coverageFixture(t *testing.T) (*curriculum.Matrix, *bank.Bank) {
	t.Helper()
	m := curriculum.New(curriculum.Document{
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
							AllowedTypes: []question.Type{question.MultipleChoice},
							PerLevel: map[question.Level]curriculum.Plan{
								question.Recognize: {Questions: 2},
							},
						},
					},
				},
			},
		},
	})

	ctx := context.Background()
	b, err := bank.Open(ctx, bank.NewMemoryStore())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	q := question.New("Q-1", m.Coordinate("so-hoc", "cong-tru"),
		question.MultipleChoice, question.Recognize, question.Body{
			Prompt: "Tính 12 + 34 = ?",
			Options: []question.Value{
				question.NumberValue(46), question.NumberValue(47),
			},
			Answer: question.NumberValue(46),
		})
	if err := b.Add(ctx, q); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return m, b
}

func TestCoverageXLSX(t *testing.T) {
	m, b := coverageFixture(t)

	blob, err := export.CoverageXLSX(m, b)
	if err != nil {
		t.Fatalf("CoverageXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}

	// Header plus one row per (lesson, level).
	wantRows := 1 + len(question.Levels)
	if len(rows) != wantRows {
		t.Fatalf("row count = %d, want %d", len(rows), wantRows)
	}
	if rows[0][0] != "topic_id" || rows[0][4] != "level" {
		t.Errorf("header = %v", rows[0])
	}

	byLevel := make(map[string][]string)
	for _, row := range rows[1:] {
		if row[0] != "so-hoc" || row[2] != "cong-tru" {
			t.Errorf("row ids = %v", row[:4])
		}
		byLevel[row[4]] = row
	}
	rec := byLevel[question.Recognize.Label()]
	if rec == nil {
		t.Fatal("no row for recognize level")
	}
	// planned 2, used 1, remaining 1
	if rec[5] != "2" || rec[6] != "1" || rec[7] != "1" {
		t.Errorf("recognize row = %v, want planned 2 used 1 remaining 1", rec)
	}
}
