package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/balasin/balasin/internal/utils"
)

// wireMessage is the on-the-wire message shape.
type wireMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse is the minimal response shape of the chat-completions endpoint.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Gateway talks to an OpenAI-compatible chat-completions service with bearer
// auth. Transient failures (network, 429, 5xx) get one retry with a short
// backoff before the call is reported as unavailable.
type Gateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryWait  time.Duration
}

type Option func(*Gateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.httpClient = c }
}

func WithRetryWait(d time.Duration) Option {
	return func(g *Gateway) { g.retryWait = d }
}

func NewGateway(baseURL, apiKey string, opts ...Option) (*Gateway, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("completion: base URL must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("completion: API key must not be empty")
	}
	g := &Gateway{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retryWait:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func chatURL(base string) string {
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

func encodeMessages(msgs []Message) ([]wireMessage, error) {
	out := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		var content any = m.Content
		if len(m.Parts) > 0 {
			content = m.Parts
		}
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		out = append(out, wireMessage{Role: m.Role, Content: raw})
	}
	return out, nil
}

func (g *Gateway) Complete(ctx context.Context, req Request) (*Result, error) {
	const op = "completion.Gateway.Complete"

	if req.Model == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "model must not be empty", nil)
	}
	if len(req.Messages) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "messages must not be empty", nil)
	}

	msgs, err := encodeMessages(req.Messages)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "encode messages", err)
	}
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "marshal request", err)
	}

	raw, err := g.doWithRetry(ctx, body)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "completion service call failed", err)
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "decode response", err)
	}
	if len(payload.Choices) == 0 {
		return nil, utils.E(utils.CodeUnavailable, op, "no choices in response", nil)
	}

	return &Result{
		Text:       strings.TrimSpace(payload.Choices[0].Message.Content),
		TokenUsage: payload.Usage.PromptTokens + payload.Usage.CompletionTokens,
	}, nil
}

func (g *Gateway) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	raw, err := g.doOnce(ctx, body)
	if err == nil || !isTransient(err) {
		return raw, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(g.retryWait):
	}
	return g.doOnce(ctx, body)
}

func (g *Gateway) doOnce(ctx context.Context, body []byte) ([]byte, error) {
	url := chatURL(g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, URL: url, Body: string(buf)}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return raw, nil
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("completion: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

type transportError struct{ err error }

func (e *transportError) Error() string { return "completion: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return false
}
