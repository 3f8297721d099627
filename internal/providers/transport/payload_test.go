package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func upsertEvent(data *EventData) *WebhookEvent {
	return &WebhookEvent{Event: EventMessagesUpsert, Instance: "inst-1", Data: data}
}

func TestExtractInbound_PlainText(t *testing.T) {
	in, skip := ExtractInbound(upsertEvent(&EventData{
		Key:      &MessageKey{RemoteJid: "628123@s.whatsapp.net", ID: "wamid-1"},
		PushName: "Budi",
		Message:  &MessageContent{Conversation: "stok ada?"},
	}))
	require.Empty(t, skip)
	require.Equal(t, "inst-1", in.Instance)
	require.Equal(t, "628123", in.PhoneNumber)
	require.Equal(t, "Budi", in.PushName)
	require.Equal(t, "stok ada?", in.Text)
	require.Nil(t, in.Media)
}

func TestExtractInbound_ExtendedText(t *testing.T) {
	in, skip := ExtractInbound(upsertEvent(&EventData{
		Key:     &MessageKey{RemoteJid: "628123@s.whatsapp.net"},
		Message: &MessageContent{ExtendedTextMessage: &ExtendedText{Text: "link produknya mana?"}},
	}))
	require.Empty(t, skip)
	require.Equal(t, "link produknya mana?", in.Text)
}

func TestExtractInbound_SkipReasons(t *testing.T) {
	_, skip := ExtractInbound(nil)
	require.Equal(t, SkipNoData, skip)

	_, skip = ExtractInbound(upsertEvent(nil))
	require.Equal(t, SkipNoData, skip)

	_, skip = ExtractInbound(upsertEvent(&EventData{
		Message: &MessageContent{Conversation: "tanpa pengirim"},
	}))
	require.Equal(t, SkipNoData, skip)

	_, skip = ExtractInbound(upsertEvent(&EventData{
		Key:     &MessageKey{RemoteJid: ""},
		Message: &MessageContent{Conversation: "jid kosong"},
	}))
	require.Equal(t, SkipNoData, skip)

	_, skip = ExtractInbound(upsertEvent(&EventData{
		Key:     &MessageKey{RemoteJid: "628123@s.whatsapp.net", FromMe: true},
		Message: &MessageContent{Conversation: "balasan sendiri"},
	}))
	require.Equal(t, SkipOutgoing, skip)

	_, skip = ExtractInbound(upsertEvent(&EventData{
		Key:     &MessageKey{RemoteJid: "12036302@g.us"},
		Message: &MessageContent{Conversation: "pesan grup"},
	}))
	require.Equal(t, SkipGroup, skip)

	_, skip = ExtractInbound(upsertEvent(&EventData{
		Key:     &MessageKey{RemoteJid: "628123@s.whatsapp.net"},
		Message: &MessageContent{Conversation: "   "},
	}))
	require.Equal(t, SkipNoText, skip)
}

func TestExtractInbound_ImageCaptionBecomesText(t *testing.T) {
	in, skip := ExtractInbound(upsertEvent(&EventData{
		Key: &MessageKey{RemoteJid: "628123@s.whatsapp.net", ID: "wamid-9"},
		Message: &MessageContent{
			ImageMessage: &MediaMessage{Caption: "ini fotonya", Mimetype: "image/jpeg"},
		},
	}))
	require.Empty(t, skip)
	require.Equal(t, "ini fotonya", in.Text)
	require.NotNil(t, in.Media)
	require.Equal(t, "image", in.Media.Kind)
	require.Equal(t, "wamid-9", in.Media.MessageID)
	require.Equal(t, "image/jpeg", in.Media.Mimetype)
}

func TestExtractInbound_CaptionlessMediaStillAccepted(t *testing.T) {
	in, skip := ExtractInbound(upsertEvent(&EventData{
		Key: &MessageKey{RemoteJid: "628123@s.whatsapp.net", ID: "wamid-2"},
		Message: &MessageContent{
			AudioMessage: &MediaMessage{Mimetype: "audio/ogg"},
		},
	}))
	require.Empty(t, skip)
	require.Empty(t, in.Text)
	require.NotNil(t, in.Media)
	require.Equal(t, "audio", in.Media.Kind)
}

func TestExtractInbound_MediaPriorityOrder(t *testing.T) {
	in, skip := ExtractInbound(upsertEvent(&EventData{
		Key: &MessageKey{RemoteJid: "628123@s.whatsapp.net", ID: "wamid-3"},
		Message: &MessageContent{
			ImageMessage:    &MediaMessage{Caption: "foto"},
			DocumentMessage: &MediaMessage{FileName: "nota.pdf"},
		},
	}))
	require.Empty(t, skip)
	require.Equal(t, "image", in.Media.Kind)
}

func TestWebhookEvent_AltFieldNames(t *testing.T) {
	evt := &WebhookEvent{Type: EventMessagesUpsert, InstanceName: "inst-alt"}
	require.Equal(t, EventMessagesUpsert, evt.Kind())
	require.Equal(t, "inst-alt", evt.InstanceID())

	evt = &WebhookEvent{Event: "messages.upsert", Instance: "inst-1", InstanceName: "shadow"}
	require.Equal(t, "inst-1", evt.InstanceID())
}
