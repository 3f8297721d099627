package transport

import "context"

// Presence states understood by the gateway.
const PresenceComposing = "composing"

// Gateway is the chat transport (Evolution API). Presence is best-effort at
// every call site; failures there must never cross into the pipeline.
type Gateway interface {
	SendPresence(ctx context.Context, instance, phone, state string) error
	SendText(ctx context.Context, instance, phone, text string) error
	// DownloadMedia fetches a message attachment and returns its raw bytes
	// plus the reported mime type.
	DownloadMedia(ctx context.Context, instance, messageID string) ([]byte, string, error)
}
