package generator

import (
	"context"
	"fmt"
	mathrand "math/rand"

	"github.com/vnexam/examgen/internal/question"
)

// Topic ids with dedicated offline template families. Anything else
// falls through to the generic placeholder.
const (
	TopicArithmetic   = "so-hoc"
	TopicGeometry     = "hinh-hoc"
	TopicWordProblems = "giai-toan"
)

// Offline generates candidates from procedural templates, fully
// determined by the seed. It is both the standalone generation path and
// the fallback when the external service fails.
type Offline struct{}

// NewOffline creates the offline strategy.
func NewOffline() *Offline { return &Offline{} }

// Generate draws a fresh seed and parameterizes the template family
// for (topic, type).
func (o *Offline) Generate(_ context.Context, req Request) (question.Body, error) {
	return o.GenerateSeeded(req, NewSeed()), nil
}

// GenerateSeeded produces the body for a fixed seed. Same request and
// seed, same body, always; that is the reproducibility contract the
// tests lean on.
func (o *Offline) GenerateSeeded(req Request, seed int64) question.Body {
	rng := mathrand.New(mathrand.NewSource(seed))

	var body question.Body
	switch req.Coordinate.TopicID {
	case TopicArithmetic:
		body = arithmeticBody(rng, req.Type)
	case TopicGeometry:
		body = geometryBody(rng, req.Type)
	case TopicWordProblems:
		body = wordProblemBody(rng, req.Type)
	}
	if body.Prompt == "" {
		body = genericBody(req)
	}

	body.Tags = []string{req.Coordinate.TopicID, req.Coordinate.LessonID}
	body.Provenance.Seed = seed
	body.Provenance.Source = question.SourceOffline
	return body
}

func arithmeticBody(rng *mathrand.Rand, t question.Type) question.Body {
	switch t {
	case question.MultipleChoice:
		a := 100 + rng.Intn(801)
		b := 100 + rng.Intn(801)
		correct := a + b
		options := numericOptions(rng, correct,
			correct+pick(rng, 1, 2, 5),
			correct-pick(rng, 1, 2, 5),
			correct+pick(rng, 10, -10),
		)
		return question.Body{
			Prompt:      fmt.Sprintf("Tính %d + %d = ?", a, b),
			Options:     options,
			Answer:      question.NumberValue(float64(correct)),
			Explanation: fmt.Sprintf("%d + %d = %d", a, b, correct),
			Provenance:  question.Provenance{Variant: "sum_two_3digits"},
		}
	case question.TrueFalse:
		a := 300 + rng.Intn(601)
		b := 10 + rng.Intn(90)
		diff := a - b
		if rng.Intn(2) == 0 {
			return question.Body{
				Prompt:      fmt.Sprintf("%d - %d = %d", a, b, diff),
				Answer:      question.TextValue("Đúng"),
				Explanation: fmt.Sprintf("Phép trừ: %d - %d = %d", a, b, diff),
				Provenance:  question.Provenance{Variant: "sub_tf"},
			}
		}
		return question.Body{
			Prompt:      fmt.Sprintf("%d - %d = %d", a, b, diff+pick(rng, 1, 2, 5)),
			Answer:      question.TextValue("Sai"),
			Explanation: fmt.Sprintf("Phép trừ: %d - %d = %d", a, b, diff),
			Provenance:  question.Provenance{Variant: "sub_tf"},
		}
	case question.FillBlank:
		x := 2 + rng.Intn(8)
		y := 2 + rng.Intn(8)
		prod := x * y
		return question.Body{
			Prompt:      fmt.Sprintf("Điền số thích hợp: %d × %d = ______", x, y),
			Answer:      question.NumberValue(float64(prod)),
			Explanation: fmt.Sprintf("%d × %d = %d", x, y, prod),
			Provenance:  question.Provenance{Variant: "mult_fill"},
		}
	case question.Essay:
		a := 20 + rng.Intn(41)
		times := 2 + rng.Intn(3)
		total := a * times
		return question.Body{
			Prompt: fmt.Sprintf(
				"Một cửa hàng có %d quyển vở. Trong ngày, cửa hàng nhập thêm gấp %d lần số vở đang có. Hỏi cửa hàng có tất cả bao nhiêu quyển vở?",
				a, times),
			Answer:      question.NumberValue(float64(total)),
			Explanation: fmt.Sprintf("Tổng vở: %d × %d = %d.", a, times, total),
			Provenance:  question.Provenance{Variant: "word_problem_multiples"},
		}
	}
	return question.Body{}
}

func geometryBody(rng *mathrand.Rand, t question.Type) question.Body {
	switch t {
	case question.MultipleChoice:
		r := 2 + rng.Intn(9)
		d := 2 * r
		options := numericOptions(rng, d, d+1, d-1, d+2)
		return question.Body{
			Prompt:      fmt.Sprintf("Hình tròn có bán kính %d cm. Đường kính là bao nhiêu?", r),
			Options:     options,
			Answer:      question.NumberValue(float64(d)),
			Explanation: "Đường kính = 2 × bán kính.",
			Unit:        "cm",
			Provenance:  question.Provenance{Variant: "circle_diameter"},
		}
	case question.FillBlank:
		a := 3 + rng.Intn(10)
		b := 3 + rng.Intn(10)
		p := 2 * (a + b)
		return question.Body{
			Prompt:      fmt.Sprintf("Chu vi hình chữ nhật có chiều dài %d cm, chiều rộng %d cm là ______ cm.", a, b),
			Answer:      question.NumberValue(float64(p)),
			Explanation: "Chu vi HCN = 2 × (dài + rộng).",
			Unit:        "cm",
			Provenance:  question.Provenance{Variant: "rectangle_perimeter"},
		}
	case question.Essay:
		a := 3 + rng.Intn(10)
		b := 3 + rng.Intn(10)
		s := a * b
		return question.Body{
			Prompt:      fmt.Sprintf("Tính diện tích hình chữ nhật có chiều dài %d cm và chiều rộng %d cm.", a, b),
			Answer:      question.NumberValue(float64(s)),
			Explanation: "Diện tích HCN = dài × rộng.",
			Unit:        "cm²",
			Provenance:  question.Provenance{Variant: "rectangle_area"},
		}
	}
	return question.Body{}
}

func wordProblemBody(rng *mathrand.Rand, t question.Type) question.Body {
	switch t {
	case question.MultipleChoice:
		small := 5 + rng.Intn(11)
		times := 2 + rng.Intn(3)
		big := small * times
		options := numericOptions(rng, big,
			big+pick(rng, 1, 2),
			big-pick(rng, 1, 2),
			big+pick(rng, 5, -5),
		)
		return question.Body{
			Prompt:      fmt.Sprintf("Số A gấp %d lần số B = %d. Hỏi A bằng bao nhiêu?", times, small),
			Options:     options,
			Answer:      question.NumberValue(float64(big)),
			Explanation: fmt.Sprintf("A = %d × %d = %d.", times, small, big),
			Provenance:  question.Provenance{Variant: "multiple_times"},
		}
	case question.TrueFalse:
		a := 10 + rng.Intn(41)
		times := 2 + rng.Intn(4)
		if rng.Intn(2) == 0 {
			return question.Body{
				Prompt:      fmt.Sprintf("Số %d gấp %d lần số %d.", a, times, a/times),
				Answer:      question.TextValue("Đúng"),
				Explanation: "Gấp k lần: A = k × B.",
				Provenance:  question.Provenance{Variant: "times_tf"},
			}
		}
		return question.Body{
			Prompt:      fmt.Sprintf("Số %d gấp %d lần số %d.", a, times, a/times+1),
			Answer:      question.TextValue("Sai"),
			Explanation: "Gấp k lần: A = k × B.",
			Provenance:  question.Provenance{Variant: "times_tf"},
		}
	case question.Essay:
		b := 6 + rng.Intn(7)
		more := 5 + rng.Intn(11)
		a := b + more
		return question.Body{
			Prompt: fmt.Sprintf(
				"Bạn An có %d viên bi, bạn Bình có ít hơn An %d viên bi. Hỏi Bình có bao nhiêu viên bi?",
				a, more),
			Answer:      question.NumberValue(float64(b)),
			Explanation: fmt.Sprintf("Số bi của Bình = %d - %d = %d.", a, more, b),
			Provenance:  question.Provenance{Variant: "word_less_more"},
		}
	}
	return question.Body{}
}

// genericBody is the designed fallback for (topic, type) pairs without
// a template family, not an error path.
func genericBody(req Request) question.Body {
	topic := req.TopicTitle
	if topic == "" {
		topic = req.Coordinate.TopicID
	}
	lesson := req.LessonTitle
	if lesson == "" {
		lesson = req.Coordinate.LessonID
	}
	return question.Body{
		Prompt:      fmt.Sprintf("Câu hỏi cơ bản về %s - %s", topic, lesson),
		Answer:      question.TextValue("Xem lời giải"),
		Explanation: "Sinh nội bộ (fallback).",
		Provenance:  question.Provenance{Variant: "generic"},
	}
}

// numericOptions builds the MCQ option list from the correct value and
// its distractors, shuffled. The correct value appears exactly once by
// construction; the validator still checks because a distractor offset
// could collide.
func numericOptions(rng *mathrand.Rand, values ...int) []question.Value {
	opts := make([]question.Value, len(values))
	for i, v := range values {
		opts[i] = question.NumberValue(float64(v))
	}
	rng.Shuffle(len(opts), func(i, j int) {
		opts[i], opts[j] = opts[j], opts[i]
	})
	return opts
}

func pick(rng *mathrand.Rand, values ...int) int {
	return values[rng.Intn(len(values))]
}
