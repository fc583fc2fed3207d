package question_test

import (
	"strings"
	"testing"

	"github.com/vnexam/examgen/internal/question"
)

func testCoordinate() question.Coordinate {
	return question.Coordinate{
		Grade:    "3",
		Subject:  "toan",
		Semester: "hk1",
		TopicID:  "so-hoc",
		LessonID: "cong-tru-pham-vi-1000",
	}
}

func validMCQ() question.Question {
	return question.New("Q-1", testCoordinate(), question.MultipleChoice, question.Recognize, question.Body{
		Prompt: "Tính 120 + 340 = ?",
		Options: []question.Value{
			question.NumberValue(460),
			question.NumberValue(461),
			question.NumberValue(459),
			question.NumberValue(470),
		},
		Answer:      question.NumberValue(460),
		Explanation: "120 + 340 = 460",
	})
}

func TestValidate_ValidQuestion(t *testing.T) {
	ok, reason := question.Validate(validMCQ())
	if !ok {
		t.Fatalf("Validate() = false, reason %q, want valid", reason)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*question.Question)
		wantReason string
	}{
		{
			name:       "missing id",
			mutate:     func(q *question.Question) { q.ID = "" },
			wantReason: "thiếu trường: id",
		},
		{
			name:       "incomplete coordinate",
			mutate:     func(q *question.Question) { q.Coordinate.LessonID = "" },
			wantReason: "thiếu trường: coordinate",
		},
		{
			name:       "unknown type",
			mutate:     func(q *question.Question) { q.Type = "Quiz" },
			wantReason: "dạng câu hỏi không hợp lệ",
		},
		{
			name:       "unknown level",
			mutate:     func(q *question.Question) { q.Level = "expert" },
			wantReason: "mức độ không hợp lệ",
		},
		{
			name:       "zero points",
			mutate:     func(q *question.Question) { q.Points = 0 },
			wantReason: "điểm phải là số dương",
		},
		{
			name:       "negative points",
			mutate:     func(q *question.Question) { q.Points = -1 },
			wantReason: "điểm phải là số dương",
		},
		{
			name:       "empty prompt",
			mutate:     func(q *question.Question) { q.Prompt = "" },
			wantReason: "thiếu trường: prompt",
		},
		{
			name:       "empty answer",
			mutate:     func(q *question.Question) { q.Answer = question.Value{} },
			wantReason: "thiếu trường: answer",
		},
		{
			name: "too few options",
			mutate: func(q *question.Question) {
				q.Options = []question.Value{question.NumberValue(460)}
			},
			wantReason: "tối thiểu 2 phương án",
		},
		{
			name: "null options do not count",
			mutate: func(q *question.Question) {
				q.Options = []question.Value{question.NumberValue(460), {}, {}}
			},
			wantReason: "tối thiểu 2 phương án",
		},
		{
			name: "answer not among options",
			mutate: func(q *question.Question) {
				q.Answer = question.NumberValue(999)
			},
			wantReason: "đáp án không duy nhất",
		},
		{
			name: "answer appears twice",
			mutate: func(q *question.Question) {
				q.Options = append(q.Options, question.NumberValue(460))
			},
			wantReason: "đáp án không duy nhất",
		},
		{
			name:       "unknown unit",
			mutate:     func(q *question.Question) { q.Unit = "dặm" },
			wantReason: "đơn vị đo không hợp lệ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validMCQ()
			tt.mutate(&q)
			ok, reason := question.Validate(q)
			if ok {
				t.Fatal("Validate() = true, want rejection")
			}
			if !strings.Contains(reason, tt.wantReason) {
				t.Errorf("reason = %q, want it to contain %q", reason, tt.wantReason)
			}
		})
	}
}

func TestValidate_TextMCQSkipsNumericRule(t *testing.T) {
	q := validMCQ()
	q.Options = []question.Value{
		question.TextValue("Hình vuông"),
		question.TextValue("Hình tròn"),
		question.TextValue("Hình tam giác"),
	}
	q.Answer = question.TextValue("Hình tròn")

	ok, reason := question.Validate(q)
	if !ok {
		t.Fatalf("Validate() = false, reason %q, want valid", reason)
	}
}

func TestValidate_EssayNeedsNoOptions(t *testing.T) {
	q := question.New("Q-2", testCoordinate(), question.Essay, question.Apply, question.Body{
		Prompt: "Tính diện tích hình chữ nhật có chiều dài 8 cm và chiều rộng 5 cm.",
		Answer: question.NumberValue(40),
		Unit:   "cm²",
	})
	ok, reason := question.Validate(q)
	if !ok {
		t.Fatalf("Validate() = false, reason %q, want valid", reason)
	}
}

func TestDefaultPoints(t *testing.T) {
	tests := []struct {
		t    question.Type
		want float64
	}{
		{question.MultipleChoice, 0.5},
		{question.TrueFalse, 0.5},
		{question.Matching, 1.0},
		{question.FillBlank, 1.0},
		{question.Essay, 1.0},
	}
	for _, tt := range tests {
		if got := question.DefaultPoints(tt.t); got != tt.want {
			t.Errorf("DefaultPoints(%s) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestType_Objective(t *testing.T) {
	if question.Essay.Objective() {
		t.Error("Essay.Objective() = true, want false")
	}
	if !question.MultipleChoice.Objective() {
		t.Error("MultipleChoice.Objective() = false, want true")
	}
}

func TestCoordinate_String(t *testing.T) {
	got := testCoordinate().String()
	want := "3/toan/hk1/so-hoc/cong-tru-pham-vi-1000"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
