package completion

import "context"

// Roles used in the prompt transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part is one element of a multi-part user message (media paired with its
// caption).
type Part struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Message is a chat-completions message. When Parts is set it marshals as a
// multi-part content array, otherwise as a plain string.
type Message struct {
	Role    string
	Content string
	Parts   []Part
}

func Text(role, content string) Message {
	return Message{Role: role, Content: content}
}

type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Result holds the reply text and the summed token cost reported by the
// service (0 when unavailable).
type Result struct {
	Text       string
	TokenUsage int64
}

type Provider interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}
