package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiProvider implements Provider on top of the Gemini REST
// generateContent endpoint.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// GeminiOption configures a GeminiProvider.
type GeminiOption func(*GeminiProvider)

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(p *GeminiProvider) {
		p.client = client
	}
}

// WithGeminiBaseURL overrides the API base URL (used in tests).
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(p *GeminiProvider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithGeminiModel overrides the default model.
func WithGeminiModel(model string) GeminiOption {
	return func(p *GeminiProvider) {
		if m := strings.TrimSpace(model); m != "" {
			p.model = m
		}
	}
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey string, opts ...GeminiOption) *GeminiProvider {
	p := &GeminiProvider{
		apiKey:  strings.TrimSpace(apiKey),
		model:   defaultGeminiModel,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: 18 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if p.apiKey == "" {
		return CompletionResponse{}, fmt.Errorf("gemini api key is empty")
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	gReq := geminiRequest{}
	for _, m := range req.Messages {
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		gReq.Contents = append(gReq.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	body, err := json.Marshal(gReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf(
		"%s/models/%s:generateContent?key=%s",
		p.baseURL, url.PathEscape(model), url.QueryEscape(p.apiKey),
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gResp geminiResponse
	if err := json.Unmarshal(respBody, &gResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return CompletionResponse{}, fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return CompletionResponse{
		Content:      sb.String(),
		Model:        model,
		InputTokens:  gResp.UsageMetadata.PromptTokenCount,
		OutputTokens: gResp.UsageMetadata.CandidatesTokenCount,
	}, nil
}

// HealthCheck verifies the provider is configured. No network call is
// made; a bad key surfaces on the first Complete.
func (p *GeminiProvider) HealthCheck(_ context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini api key is empty")
	}
	return nil
}
