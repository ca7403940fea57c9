package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

const defaultTimeout = 2 * time.Minute

// OllamaGenerator generates completions through an Ollama server.
type OllamaGenerator struct {
	client     *api.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger // optional
}

// OllamaOption configures an OllamaGenerator.
type OllamaOption func(*OllamaGenerator)

// WithLogger sets a logger for debug output (request model, retries).
func WithLogger(l *zap.Logger) OllamaOption {
	return func(g *OllamaGenerator) { g.logger = l }
}

// WithMaxRetries sets the attempt ceiling for rate-limited requests.
func WithMaxRetries(n int) OllamaOption {
	return func(g *OllamaGenerator) { g.maxRetries = n }
}

// NewOllamaGenerator creates a generator talking to the Ollama server at baseURL.
func NewOllamaGenerator(baseURL string, timeout time.Duration, opts ...OllamaOption) (*OllamaGenerator, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM base URL %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	g := &OllamaGenerator{
		client:     api.NewClient(base, &http.Client{Timeout: timeout}),
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate sends one chat completion request. Rate-limited requests are
// retried with exponential backoff up to the attempt ceiling; the last
// outcome, success or failure, is then returned as-is. Other failures are
// returned immediately and are fatal to the caller's turn.
func (g *OllamaGenerator) Generate(ctx context.Context, req *Request) (string, error) {
	chatReq := g.buildChatRequest(req)

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := g.baseDelay << (attempt - 1)
			if g.logger != nil {
				g.logger.Debug("generation rate limited, retrying",
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
				)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		content, err := g.chat(ctx, chatReq)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !IsRateLimited(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (g *OllamaGenerator) buildChatRequest(req *Request) *api.ChatRequest {
	stream := false
	chatReq := &api.ChatRequest{
		Model:  req.Model,
		Stream: &stream,
	}
	if req.ForceJSON {
		chatReq.Format = json.RawMessage(`"json"`)
	}
	if p := req.Sampling; p != nil {
		chatReq.Options = map[string]any{
			"temperature":    p.Temperature,
			"top_p":          p.TopP,
			"num_predict":    p.NumPredict,
			"top_k":          p.TopK,
			"repeat_penalty": p.RepeatPenalty,
		}
	}
	chatReq.Messages = make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, api.Message{Role: m.Role, Content: m.Content})
	}
	return chatReq
}

func (g *OllamaGenerator) chat(ctx context.Context, chatReq *api.ChatRequest) (string, error) {
	var content strings.Builder
	err := g.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return strings.TrimSpace(content.String()), nil
}

// Close is a no-op for OllamaGenerator.
func (g *OllamaGenerator) Close() error {
	return nil
}

// IsRateLimited reports whether err is a rate-limit signal from the
// generation service.
func IsRateLimited(err error) bool {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
