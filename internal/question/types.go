// Package question defines the exam question model and the admission
// validator applied to every candidate before it enters the bank.
package question

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Coordinate identifies a teaching unit: the (grade, subject, semester,
// topic, lesson) tuple every question and exam is filed under. It is an
// immutable key; validity against the loaded matrix is the caller's
// concern.
type Coordinate struct {
	Grade    string `json:"grade" yaml:"grade"`
	Subject  string `json:"subject" yaml:"subject"`
	Semester string `json:"semester" yaml:"semester"`
	TopicID  string `json:"topic_id" yaml:"topic_id"`
	LessonID string `json:"lesson_id" yaml:"lesson_id"`
}

// String renders the coordinate as a stable path-like key.
func (c Coordinate) String() string {
	return strings.Join([]string{c.Grade, c.Subject, c.Semester, c.TopicID, c.LessonID}, "/")
}

// Complete reports whether every part of the coordinate is set.
func (c Coordinate) Complete() bool {
	return c.Grade != "" && c.Subject != "" && c.Semester != "" && c.TopicID != "" && c.LessonID != ""
}

// Type is the question form.
type Type string

const (
	MultipleChoice Type = "MultipleChoice"
	TrueFalse      Type = "TrueFalse"
	Matching       Type = "Matching"
	FillBlank      Type = "FillBlank"
	Essay          Type = "Essay"
)

// Types lists all question forms in presentation order.
var Types = []Type{MultipleChoice, TrueFalse, Matching, FillBlank, Essay}

// Label returns the Vietnamese display label for a question type.
func (t Type) Label() string {
	switch t {
	case MultipleChoice:
		return "Nhiều lựa chọn"
	case TrueFalse:
		return "Đúng/Sai"
	case Matching:
		return "Nối cột"
	case FillBlank:
		return "Điền khuyết"
	case Essay:
		return "Tự luận"
	default:
		return string(t)
	}
}

// Valid reports whether t is a known question type.
func (t Type) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, Matching, FillBlank, Essay:
		return true
	}
	return false
}

// Objective reports whether the type belongs to the objective part of a
// printed exam (everything except essay).
func (t Type) Objective() bool {
	return t != Essay
}

// Level is the cognitive difficulty level from the curriculum matrix.
type Level string

const (
	Recognize  Level = "recognize"
	Understand Level = "understand"
	Apply      Level = "apply"
)

// Levels lists the difficulty levels in matrix order.
var Levels = []Level{Recognize, Understand, Apply}

// Label returns the Vietnamese display label for a level.
func (l Level) Label() string {
	switch l {
	case Recognize:
		return "Nhận biết"
	case Understand:
		return "Thông hiểu"
	case Apply:
		return "Vận dụng"
	default:
		return string(l)
	}
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case Recognize, Understand, Apply:
		return true
	}
	return false
}

// DefaultPoints returns the default point value for a question type.
func DefaultPoints(t Type) float64 {
	switch t {
	case MultipleChoice, TrueFalse:
		return 0.5
	default:
		return 1.0
	}
}

// AllowedUnits is the fixed set of measurement units a question may
// carry. The empty string means "no unit".
var AllowedUnits = []string{"", "cm", "m", "km", "cm²", "m²", "l", "kg", "s", "phút", "giờ"}

// UnitAllowed reports whether unit is a member of AllowedUnits.
func UnitAllowed(unit string) bool {
	for _, u := range AllowedUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// Value is an answer or option scalar. A question's answer may be a
// number, a free-text token, or a boolean-like token ("Đúng"/"Sai");
// numeric identity must survive a JSON round trip so the unique-correct-
// option rule can compare numbers as numbers.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// NumberValue makes a numeric Value.
func NumberValue(n float64) Value {
	return Value{Number: n, Numeric: true}
}

// TextValue makes a text Value.
func TextValue(s string) Value {
	return Value{Text: s}
}

// IsZero reports whether v carries no content at all.
func (v Value) IsZero() bool {
	return !v.Numeric && v.Text == ""
}

// Equal compares two values; numbers compare numerically, text
// compares exactly.
func (v Value) Equal(o Value) bool {
	if v.Numeric != o.Numeric {
		return false
	}
	if v.Numeric {
		return v.Number == o.Number
	}
	return v.Text == o.Text
}

// String renders the value for display and export.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// MarshalJSON writes numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*v = Value{}
		return nil
	case s == "true":
		*v = TextValue("Đúng")
		return nil
	case s == "false":
		*v = TextValue("Sai")
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberValue(n)
		return nil
	}
	var t string
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("value must be a number, string or boolean: %w", err)
	}
	*v = TextValue(t)
	return nil
}

// Source identifies which generation path produced a question.
type Source string

const (
	SourceOffline Source = "offline"
	SourceService Source = "external-service"
)

// Provenance records how a question body was produced.
type Provenance struct {
	Seed    int64  `json:"seed"`
	Variant string `json:"variant"`
	Source  Source `json:"source"`
}

// Body is the type-specific content of a question: everything except
// the identity fields (id, coordinate, type, level, points). A Body is
// what generators produce and what a regenerate swaps in place.
type Body struct {
	Prompt      string     `json:"prompt"`
	Options     []Value    `json:"options,omitempty"`
	Answer      Value      `json:"answer"`
	Explanation string     `json:"explanation"`
	Unit        string     `json:"unit"`
	Tags        []string   `json:"tags,omitempty"`
	Provenance  Provenance `json:"provenance"`
}

// Question is a bank record. ID and Coordinate are stable for the
// record's lifetime; Body fields may be swapped by a regenerate.
type Question struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	Type       Type       `json:"type"`
	Level      Level      `json:"level"`
	Points     float64    `json:"points"`
	Body
}

// New assembles a question from its identity fields and a generated
// body, applying the default points for the type. Callers override
// Points afterwards when the matrix dictates a different weight.
func New(id string, coord Coordinate, t Type, level Level, body Body) Question {
	return Question{
		ID:         id,
		Coordinate: coord,
		Type:       t,
		Level:      level,
		Points:     DefaultPoints(t),
		Body:       body,
	}
}
