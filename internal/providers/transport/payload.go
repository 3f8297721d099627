package transport

import "strings"

// EventMessagesUpsert is the only webhook event kind the pipeline processes.
const EventMessagesUpsert = "messages.upsert"

// Skip reasons returned by ExtractInbound and acknowledged to the sender.
const (
	SkipNoData   = "no_data"
	SkipOutgoing = "skipped_outgoing"
	SkipGroup    = "skipped_group"
	SkipNoText   = "no_text"
)

// WebhookEvent is the Evolution API webhook envelope. Fields are extracted
// permissively: anything optional may be absent.
type WebhookEvent struct {
	Event        string     `json:"event"`
	Type         string     `json:"type"`
	Instance     string     `json:"instance"`
	InstanceName string     `json:"instanceName"`
	Data         *EventData `json:"data"`
}

// Kind returns the event kind, whichever field carried it.
func (e *WebhookEvent) Kind() string {
	if e.Event != "" {
		return e.Event
	}
	return e.Type
}

// InstanceID returns the instance identifier, whichever field carried it.
func (e *WebhookEvent) InstanceID() string {
	if e.Instance != "" {
		return e.Instance
	}
	return e.InstanceName
}

type EventData struct {
	Key      *MessageKey     `json:"key"`
	PushName string          `json:"pushName"`
	Message  *MessageContent `json:"message"`
}

type MessageKey struct {
	RemoteJid string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type MessageContent struct {
	Conversation        string        `json:"conversation"`
	ExtendedTextMessage *ExtendedText `json:"extendedTextMessage"`
	ImageMessage        *MediaMessage `json:"imageMessage"`
	VideoMessage        *MediaMessage `json:"videoMessage"`
	AudioMessage        *MediaMessage `json:"audioMessage"`
	DocumentMessage     *MediaMessage `json:"documentMessage"`
}

type ExtendedText struct {
	Text string `json:"text"`
}

type MediaMessage struct {
	Caption  string `json:"caption"`
	Mimetype string `json:"mimetype"`
	FileName string `json:"fileName"`
}

// Inbound is a normalized one-to-one customer message.
type Inbound struct {
	Instance    string
	PhoneNumber string
	PushName    string
	Text        string
	Media       *InboundMedia
}

// InboundMedia references an attachment still living on the transport side;
// MessageID is the key used to download it.
type InboundMedia struct {
	MessageID string
	Kind      string // image|video|audio|document
	Caption   string
	Mimetype  string
}

// ExtractInbound normalizes a messages.upsert payload. A non-empty skip
// reason means the event is acknowledged without processing.
func ExtractInbound(evt *WebhookEvent) (*Inbound, string) {
	if evt == nil || evt.Data == nil {
		return nil, SkipNoData
	}
	data := evt.Data

	if data.Key != nil && data.Key.FromMe {
		return nil, SkipOutgoing
	}

	remoteJid := ""
	if data.Key != nil {
		remoteJid = data.Key.RemoteJid
	}
	if strings.Contains(remoteJid, "@g.us") {
		return nil, SkipGroup
	}

	phone := strings.TrimSuffix(remoteJid, "@s.whatsapp.net")
	phone = strings.TrimSuffix(phone, "@g.us")
	if phone == "" {
		return nil, SkipNoData
	}

	in := &Inbound{
		Instance:    evt.InstanceID(),
		PhoneNumber: phone,
		PushName:    data.PushName,
	}

	if data.Message != nil {
		msg := data.Message
		in.Text = msg.Conversation
		if in.Text == "" && msg.ExtendedTextMessage != nil {
			in.Text = msg.ExtendedTextMessage.Text
		}

		if m, kind := firstMedia(msg); m != nil {
			in.Media = &InboundMedia{
				Kind:     kind,
				Caption:  m.Caption,
				Mimetype: m.Mimetype,
			}
			if data.Key != nil {
				in.Media.MessageID = data.Key.ID
			}
			if in.Text == "" {
				in.Text = m.Caption
			}
		}
	}

	if strings.TrimSpace(in.Text) == "" && in.Media == nil {
		return nil, SkipNoText
	}
	return in, ""
}

func firstMedia(m *MessageContent) (*MediaMessage, string) {
	switch {
	case m.ImageMessage != nil:
		return m.ImageMessage, "image"
	case m.VideoMessage != nil:
		return m.VideoMessage, "video"
	case m.AudioMessage != nil:
		return m.AudioMessage, "audio"
	case m.DocumentMessage != nil:
		return m.DocumentMessage, "document"
	}
	return nil, ""
}
