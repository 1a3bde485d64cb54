package maytapi

// MessageTypeText is the only message type this client sends.
const MessageTypeText = "text"

// APIResponse is the decoded JSON object returned by the gateway, uninterpreted.
type APIResponse map[string]any

// OutboundMessage describes one sendMessage call.
// Text carries either a locator or inline encoded data; the gateway tells them apart.
type OutboundMessage struct {
	To      string
	Text    string
	Caption *string
}

// MessageOption customizes an OutboundMessage.
type MessageOption func(*OutboundMessage)

// WithCaption attaches a caption, sent as the "message" field.
func WithCaption(caption string) MessageOption {
	return func(m *OutboundMessage) {
		m.Caption = &caption
	}
}

type sendMessagePayload struct {
	ToNumber string `json:"to_number"`
	Type     string `json:"type"`
	Message  string `json:"message"`
	Text     string `json:"text"`
}

func (m OutboundMessage) payload() sendMessagePayload {
	caption := ""
	if m.Caption != nil {
		caption = *m.Caption
	}
	return sendMessagePayload{
		ToNumber: m.To,
		Type:     MessageTypeText,
		Message:  caption,
		Text:     m.Text,
	}
}

func newOutboundMessage(to, text string, opts []MessageOption) OutboundMessage {
	msg := OutboundMessage{To: to, Text: text}
	for _, opt := range opts {
		if opt != nil {
			opt(&msg)
		}
	}
	return msg
}
