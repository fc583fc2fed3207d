package generator

import (
	"strings"
	"testing"

	"github.com/vnexam/examgen/internal/question"
)

func TestBuildPrompt(t *testing.T) {
	req := Request{
		Coordinate: question.Coordinate{
			Grade: "3", Subject: "toan", Semester: "hk1",
			TopicID: "hinh-hoc", LessonID: "hinh-tron",
		},
		TopicTitle:  "Hình học",
		LessonTitle: "Hình tròn, tâm, đường kính, bán kính",
		Type:        question.MultipleChoice,
		Level:       question.Understand,
	}

	prompt := buildPrompt(req)

	for _, want := range []string{
		"Hình học",
		"Hình tròn, tâm, đường kính, bán kính",
		"Nhiều lựa chọn",
		"Thông hiểu",
		"JSON",
		"TT27",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	payload := `{"prompt":"p","answer":5}`

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no fence", payload, payload},
		{"plain fence", "```\n" + payload + "\n```", payload},
		{"json tag", "```json\n" + payload + "\n```", payload},
		{"surrounding whitespace", "  \n```json\n" + payload + "\n```\n ", payload},
		{"fence on one line", "```" + payload + "```", payload},
		{"unterminated fence", "```json\n" + payload, payload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.raw); got != tt.want {
				t.Errorf("stripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}
