package generator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vnexam/examgen/internal/ai"
	"github.com/vnexam/examgen/internal/question"
)

// defaultServiceTimeout bounds a single external generation attempt.
// Expiry is reported as a ServiceError, which triggers the offline
// fallback in the batcher.
const defaultServiceTimeout = 30 * time.Second

// Service generates candidates through the AI gateway and parses the
// response into a question body. Any failure along the way is a
// *ServiceError; there are no partial results.
type Service struct {
	router  *ai.Router
	timeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService creates the external-service strategy on top of a
// provider router.
func NewService(router *ai.Router, opts ...ServiceOption) *Service {
	s := &Service{
		router:  router,
		timeout: defaultServiceTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// servicePayload is the JSON shape the prompt instructs the service to
// return.
type servicePayload struct {
	Prompt      string           `json:"prompt"`
	Options     []question.Value `json:"options"`
	Answer      question.Value   `json:"answer"`
	Explanation string           `json:"explanation"`
	Unit        string           `json:"unit"`
	Tags        []string         `json:"tags"`
}

func (s *Service) Generate(ctx context.Context, req Request) (question.Body, error) {
	if s.router == nil || !s.router.HasProvider() {
		return question.Body{}, &ServiceError{Reason: "no provider configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: buildPrompt(req)}},
	})
	if err != nil {
		return question.Body{}, &ServiceError{Reason: "completion failed", Err: err}
	}

	raw := []byte(stripCodeFences(resp.Content))
	if err := question.CheckServicePayload(raw); err != nil {
		return question.Body{}, &ServiceError{Reason: "unparsable response", Err: err}
	}

	var payload servicePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return question.Body{}, &ServiceError{Reason: "unparsable response", Err: err}
	}

	tags := payload.Tags
	if len(tags) == 0 {
		tags = []string{req.Coordinate.TopicID, req.Coordinate.LessonID}
	}

	return question.Body{
		Prompt:      payload.Prompt,
		Options:     payload.Options,
		Answer:      payload.Answer,
		Explanation: payload.Explanation,
		Unit:        payload.Unit,
		Tags:        tags,
		Provenance: question.Provenance{
			Seed:    NewSeed(),
			Variant: "api",
			Source:  question.SourceService,
		},
	}, nil
}
