package generator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/dedup"
	"github.com/vnexam/examgen/internal/question"
)

// ErrTypeNotAllowed blocks generation up front when the requested
// question type is not in the lesson's allowed set. No candidate is
// produced.
var ErrTypeNotAllowed = errors.New("question type not allowed by lesson matrix")

// Rejection explains why one batch slot yielded no candidate.
type Rejection struct {
	Slot   int    `json:"slot"`
	Stage  string `json:"stage"` // "validation" or "duplicate"
	Reason string `json:"reason"`
}

// Progress is emitted once per slot while a batch runs, for streaming
// status to the caller.
type Progress struct {
	Slot     int             `json:"slot"`
	Total    int             `json:"total"`
	Source   question.Source `json:"source"`
	Kept     bool            `json:"kept"`
	Reason   string          `json:"reason,omitempty"`
	Fallback bool            `json:"fallback,omitempty"` // service failed, offline substituted
}

// Batcher runs batch generation: N independent slots, each generated,
// validated and deduplicated on its own. A slot whose candidate is
// rejected stays empty; the yield may be below N and callers must
// accept that.
type Batcher struct {
	offline  *Offline
	service  *Service
	registry dedup.Registry
}

// NewBatcher wires the two strategies and the dedup registry. service
// may be nil when no external provider is configured.
func NewBatcher(offline *Offline, service *Service, registry dedup.Registry) *Batcher {
	if registry == nil {
		registry = dedup.NewMemoryRegistry()
	}
	return &Batcher{offline: offline, service: service, registry: registry}
}

// Generate produces up to n validated candidates for the request.
// When useService is set, each slot first tries the external service
// and falls back to the offline templates on failure; the contract is
// n generation attempts regardless of service availability. onProgress
// may be nil.
func (b *Batcher) Generate(
	ctx context.Context,
	lm curriculum.LessonMatrix,
	req Request,
	n int,
	useService bool,
	onProgress func(Progress),
) ([]question.Question, []Rejection, error) {
	if !lm.AllowsType(req.Type) {
		return nil, nil, ErrTypeNotAllowed
	}

	var (
		kept       []question.Question
		rejections []Rejection
	)
	for slot := 1; slot <= n; slot++ {
		if err := ctx.Err(); err != nil {
			return kept, rejections, err
		}

		body, fellBack, err := b.generateOne(ctx, req, useService)
		if err != nil {
			return kept, rejections, err
		}

		q := question.New(NewID(req.Coordinate), req.Coordinate, req.Type, req.Level, body)

		progress := Progress{
			Slot:     slot,
			Total:    n,
			Source:   body.Provenance.Source,
			Fallback: fellBack,
		}

		if ok, reason := question.Validate(q); !ok {
			rejections = append(rejections, Rejection{Slot: slot, Stage: "validation", Reason: reason})
			progress.Reason = reason
			emit(onProgress, progress)
			slog.Warn("candidate rejected", "slot", slot, "reason", reason)
			continue
		}

		seen, err := b.registry.Seen(ctx, q.Coordinate, dedup.Digest(q.Prompt))
		if err != nil {
			return kept, rejections, err
		}
		if seen {
			const reason = "nội dung trùng với câu đã có"
			rejections = append(rejections, Rejection{Slot: slot, Stage: "duplicate", Reason: reason})
			progress.Reason = reason
			emit(onProgress, progress)
			slog.Warn("candidate rejected", "slot", slot, "reason", reason)
			continue
		}

		kept = append(kept, q)
		progress.Kept = true
		emit(onProgress, progress)
	}

	return kept, rejections, nil
}

// generateOne runs a single slot: service first when requested, offline
// otherwise or as the fallback.
func (b *Batcher) generateOne(ctx context.Context, req Request, useService bool) (question.Body, bool, error) {
	if useService && b.service != nil {
		body, err := b.service.Generate(ctx, req)
		if err == nil {
			return body, false, nil
		}

		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			return question.Body{}, false, err
		}
		slog.Info("generation service unavailable, using offline templates", "reason", svcErr.Reason)
	}

	body, err := b.offline.Generate(ctx, req)
	return body, useService && b.service != nil, err
}

func emit(onProgress func(Progress), p Progress) {
	if onProgress != nil {
		onProgress(p)
	}
}
