package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoProvider is returned when no registered provider could serve a
// request.
var ErrNoProvider = errors.New("all generation providers failed")

// Router fans a completion request across registered providers in
// registration order, falling through on failure. It also counts
// attempted external calls for the session status display.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Provider
	fallback  []string
	calls     int64
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider at the end of the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	r.fallback = append(r.fallback, name)
}

// HasProvider reports whether at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// Calls returns the number of external completion attempts made so
// far in this process.
func (r *Router) Calls() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}

// Complete tries each provider in fallback order and returns the first
// successful response.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.Lock()
	chain := append([]string(nil), r.fallback...)
	providers := make(map[string]Provider, len(r.providers))
	for name, p := range r.providers {
		providers[name] = p
	}
	r.calls++
	r.mu.Unlock()

	for _, name := range chain {
		resp, err := providers[name].Complete(ctx, req)
		if err != nil {
			slog.Warn("generation provider failed, trying next",
				"provider", name,
				"error", err,
			)
			continue
		}

		slog.Debug("generation request completed",
			"provider", name,
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("%w (%d in chain)", ErrNoProvider, len(chain))
}
