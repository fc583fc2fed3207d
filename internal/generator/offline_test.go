package generator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/vnexam/examgen/internal/generator"
	"github.com/vnexam/examgen/internal/question"
)

func testRequest(topicID string, t question.Type, level question.Level) generator.Request {
	return generator.Request{
		Coordinate: question.Coordinate{
			Grade: "3", Subject: "toan", Semester: "hk1",
			TopicID: topicID, LessonID: "bai-1",
		},
		TopicTitle:  "Chủ đề",
		LessonTitle: "Bài học",
		Type:        t,
		Level:       level,
	}
}

// Same request and seed must always produce the same body.
func TestOffline_GenerateSeeded_Deterministic(t *testing.T) {
	o := generator.NewOffline()
	req := testRequest(generator.TopicArithmetic, question.MultipleChoice, question.Recognize)

	first := o.GenerateSeeded(req, 123456)
	for i := 0; i < 10; i++ {
		again := o.GenerateSeeded(req, 123456)
		if again.Prompt != first.Prompt {
			t.Fatalf("run %d: Prompt = %q, want %q", i, again.Prompt, first.Prompt)
		}
		if !again.Answer.Equal(first.Answer) {
			t.Fatalf("run %d: Answer = %+v, want %+v", i, again.Answer, first.Answer)
		}
		if len(again.Options) != len(first.Options) {
			t.Fatalf("run %d: option count differs", i)
		}
		for j := range first.Options {
			if !again.Options[j].Equal(first.Options[j]) {
				t.Fatalf("run %d: option %d differs (shuffle must be seeded)", i, j)
			}
		}
	}

	if first.Provenance.Seed != 123456 {
		t.Errorf("Provenance.Seed = %d, want 123456", first.Provenance.Seed)
	}
	if first.Provenance.Source != question.SourceOffline {
		t.Errorf("Provenance.Source = %q, want offline", first.Provenance.Source)
	}
}

func TestOffline_DifferentSeedsVary(t *testing.T) {
	o := generator.NewOffline()
	req := testRequest(generator.TopicArithmetic, question.MultipleChoice, question.Recognize)

	prompts := make(map[string]bool)
	for seed := int64(100000); seed < 100020; seed++ {
		prompts[o.GenerateSeeded(req, seed).Prompt] = true
	}
	if len(prompts) < 2 {
		t.Errorf("20 seeds produced %d distinct prompts, want variation", len(prompts))
	}
}

// Every template family must produce candidates that pass admission
// validation; the MCQ families must place the correct value among the
// options exactly once.
func TestOffline_TemplatesProduceValidQuestions(t *testing.T) {
	o := generator.NewOffline()

	combos := []struct {
		topic string
		t     question.Type
	}{
		{generator.TopicArithmetic, question.MultipleChoice},
		{generator.TopicArithmetic, question.TrueFalse},
		{generator.TopicArithmetic, question.FillBlank},
		{generator.TopicArithmetic, question.Essay},
		{generator.TopicGeometry, question.MultipleChoice},
		{generator.TopicGeometry, question.FillBlank},
		{generator.TopicGeometry, question.Essay},
		{generator.TopicWordProblems, question.MultipleChoice},
		{generator.TopicWordProblems, question.TrueFalse},
		{generator.TopicWordProblems, question.Essay},
	}
	for _, combo := range combos {
		t.Run(combo.topic+"/"+string(combo.t), func(t *testing.T) {
			req := testRequest(combo.topic, combo.t, question.Understand)
			for seed := int64(100000); seed < 100050; seed++ {
				body := o.GenerateSeeded(req, seed)
				q := question.New(generator.NewID(req.Coordinate), req.Coordinate, combo.t, req.Level, body)
				if ok, reason := question.Validate(q); !ok {
					t.Fatalf("seed %d: invalid candidate: %s (prompt %q)", seed, reason, body.Prompt)
				}
				if combo.t == question.MultipleChoice {
					hits := 0
					for _, opt := range body.Options {
						if opt.Equal(body.Answer) {
							hits++
						}
					}
					if hits != 1 {
						t.Fatalf("seed %d: answer appears %d times among options", seed, hits)
					}
				}
			}
		})
	}
}

func TestOffline_GenericFallback(t *testing.T) {
	o := generator.NewOffline()
	req := testRequest("tin-hoc", question.Essay, question.Recognize)
	req.TopicTitle = "Tin học"
	req.LessonTitle = "Máy tính và em"

	body := o.GenerateSeeded(req, 123456)
	if !strings.Contains(body.Prompt, "Tin học") || !strings.Contains(body.Prompt, "Máy tính và em") {
		t.Errorf("Prompt = %q, want generic prompt with titles", body.Prompt)
	}
	if body.Provenance.Variant != "generic" {
		t.Errorf("Variant = %q, want generic", body.Provenance.Variant)
	}
}

func TestOffline_TagsCarryCoordinate(t *testing.T) {
	o := generator.NewOffline()
	req := testRequest(generator.TopicGeometry, question.MultipleChoice, question.Recognize)

	body := o.GenerateSeeded(req, 123456)
	if len(body.Tags) != 2 || body.Tags[0] != generator.TopicGeometry || body.Tags[1] != "bai-1" {
		t.Errorf("Tags = %v, want [topic lesson]", body.Tags)
	}
}

func TestOffline_GenerateDrawsSeedInRange(t *testing.T) {
	o := generator.NewOffline()
	req := testRequest(generator.TopicArithmetic, question.FillBlank, question.Recognize)

	for i := 0; i < 20; i++ {
		body, err := o.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if body.Provenance.Seed < 100000 || body.Provenance.Seed > 999999 {
			t.Fatalf("seed = %d, want six digits", body.Provenance.Seed)
		}
	}
}

func TestNewID_Shape(t *testing.T) {
	coord := question.Coordinate{
		Grade: "3", Subject: "toan", Semester: "hk1",
		TopicID: "so-hoc", LessonID: "cong-tru",
	}

	id := generator.NewID(coord)
	if !strings.HasPrefix(id, "Q-toan-3-hk1-so-hoc-cong-tru-") {
		t.Errorf("NewID() = %q, want coordinate prefix", id)
	}
	if id == generator.NewID(coord) {
		t.Error("two ids for the same coordinate should differ")
	}

	examID := generator.NewExamID(coord)
	if !strings.HasPrefix(examID, "EX-toan-3-hk1-") {
		t.Errorf("NewExamID() = %q, want EX prefix", examID)
	}
}
