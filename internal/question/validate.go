package question

import "fmt"

// Validate is the admission gate applied to every candidate before it
// enters the bank. Checks run in order and stop at the first failure.
// Validation is deliberately local: no cross-question checks, so both
// generation paths and the regenerate flow reuse it unchanged.
func Validate(q Question) (bool, string) {
	if q.ID == "" {
		return false, "thiếu trường: id"
	}
	if !q.Coordinate.Complete() {
		return false, "thiếu trường: coordinate"
	}
	if !q.Type.Valid() {
		return false, fmt.Sprintf("dạng câu hỏi không hợp lệ: %q", q.Type)
	}
	if !q.Level.Valid() {
		return false, fmt.Sprintf("mức độ không hợp lệ: %q", q.Level)
	}
	if q.Points <= 0 {
		return false, "điểm phải là số dương"
	}
	if q.Prompt == "" {
		return false, "thiếu trường: prompt"
	}
	if q.Answer.IsZero() {
		return false, "thiếu trường: answer"
	}

	if q.Type == MultipleChoice {
		if n := countNonNull(q.Options); n < 2 {
			return false, "câu nhiều lựa chọn cần tối thiểu 2 phương án"
		}
		if q.Answer.Numeric && hasNumeric(q.Options) {
			if !uniqueNumericAnswer(q.Options, q.Answer) {
				return false, "câu số học: đáp án không duy nhất hoặc không nằm trong phương án"
			}
		}
	}

	if !UnitAllowed(q.Unit) {
		return false, fmt.Sprintf("đơn vị đo không hợp lệ: %q", q.Unit)
	}
	return true, ""
}

func countNonNull(opts []Value) int {
	n := 0
	for _, o := range opts {
		if !o.IsZero() {
			n++
		}
	}
	return n
}

func hasNumeric(opts []Value) bool {
	for _, o := range opts {
		if o.Numeric {
			return true
		}
	}
	return false
}

// uniqueNumericAnswer requires the numeric answer to appear among the
// numeric options exactly once.
func uniqueNumericAnswer(opts []Value, answer Value) bool {
	hits := 0
	for _, o := range opts {
		if o.Numeric && o.Number == answer.Number {
			hits++
		}
	}
	return hits == 1
}
