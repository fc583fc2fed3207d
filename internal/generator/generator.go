// Package generator produces candidate question bodies, either from
// deterministic offline templates or from an external generation
// service, normalized to the same shape. Candidates always pass through
// the question validator before anything keeps them.
package generator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"

	"github.com/vnexam/examgen/internal/question"
)

// Request identifies what to generate: the curriculum coordinate with
// human-readable labels plus the requested type and level.
type Request struct {
	Coordinate  question.Coordinate
	TopicTitle  string
	LessonTitle string
	Type        question.Type
	Level       question.Level
}

// Strategy produces one candidate body for a request. The id is never
// part of the body; the batcher assigns it.
type Strategy interface {
	Generate(ctx context.Context, req Request) (question.Body, error)
}

// ServiceError marks a failure of the external generation path:
// unreachable service, provider error, or an unparsable response. The
// batcher treats it as the signal to fall back to offline generation
// for that slot.
type ServiceError struct {
	Reason string
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation service: %s: %v", e.Reason, e.Err)
	}
	return "generation service: " + e.Reason
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewSeed draws a six-digit generation seed, recorded in provenance so
// offline variants can be reproduced.
func NewSeed() int64 {
	return 100000 + mathrand.Int63n(900000)
}

// NewID builds a bank-unique question id from the coordinate plus a
// short random suffix.
func NewID(coord question.Coordinate) string {
	return fmt.Sprintf("Q-%s-%s-%s-%s-%s-%s",
		coord.Subject, coord.Grade, coord.Semester, coord.TopicID, coord.LessonID, randomSuffix())
}

// NewExamID builds an exam id in the same scheme.
func NewExamID(coord question.Coordinate) string {
	return fmt.Sprintf("EX-%s-%s-%s-%s",
		coord.Subject, coord.Grade, coord.Semester, randomSuffix())
}

func randomSuffix() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
