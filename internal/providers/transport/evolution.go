package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Evolution is the HTTP client for an Evolution API deployment. Auth is a
// static apikey header. Text sends get one retry with a short backoff on
// transient failures; presence never retries.
type Evolution struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	retryWait  time.Duration
}

type EvolutionOption func(*Evolution)

func WithHTTPClient(c *http.Client) EvolutionOption {
	return func(e *Evolution) { e.httpClient = c }
}

func WithRetryWait(d time.Duration) EvolutionOption {
	return func(e *Evolution) { e.retryWait = d }
}

func NewEvolution(baseURL, apiKey string, opts ...EvolutionOption) (*Evolution, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("transport: base URL must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("transport: API key must not be empty")
	}
	e := &Evolution{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retryWait:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (e *Evolution) SendPresence(ctx context.Context, instance, phone, state string) error {
	body := map[string]string{
		"number":   normalizePhone(phone),
		"presence": state,
	}
	_, err := e.post(ctx, "/chat/presence/"+instance, body)
	return err
}

func (e *Evolution) SendText(ctx context.Context, instance, phone, text string) error {
	body := map[string]string{
		"number": normalizePhone(phone),
		"text":   text,
	}

	_, err := e.post(ctx, "/message/sendText/"+instance, body)
	if err == nil || !isTransientSendErr(err) {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(e.retryWait):
	}
	_, err = e.post(ctx, "/message/sendText/"+instance, body)
	return err
}

// mediaResponse is the shape returned by getBase64FromMediaMessage.
type mediaResponse struct {
	Base64   string `json:"base64"`
	Mimetype string `json:"mimetype"`
}

func (e *Evolution) DownloadMedia(ctx context.Context, instance, messageID string) ([]byte, string, error) {
	body := map[string]any{
		"message": map[string]any{
			"key": map[string]string{"id": messageID},
		},
		"convertToMp4": false,
	}

	raw, err := e.post(ctx, "/chat/getBase64FromMediaMessage/"+instance, body)
	if err != nil {
		return nil, "", err
	}

	var mr mediaResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return nil, "", fmt.Errorf("transport: decode media response: %w", err)
	}

	b64 := mr.Base64
	if i := strings.Index(b64, ","); i >= 0 {
		b64 = b64[i+1:] // strip data:...;base64, prefix
	}
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", fmt.Errorf("transport: decode media base64: %w", err)
	}
	return decoded, mr.Mimetype, nil
}

func (e *Evolution) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal request: %w", err)
	}

	url := e.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("transport: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", e.apiKey)

	res, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &sendError{err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &StatusError{StatusCode: res.StatusCode, URL: url, Body: string(buf)}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("transport: read response body: %w", err)
	}
	return raw, nil
}

// StatusError captures non-2xx gateway responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

type sendError struct{ err error }

func (e *sendError) Error() string { return "transport: " + e.err.Error() }
func (e *sendError) Unwrap() error { return e.err }

func isTransientSendErr(err error) bool {
	var ne *sendError
	if errors.As(err, &ne) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return false
}
