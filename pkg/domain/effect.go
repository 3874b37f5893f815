package domain

// EffectKind defines the side-effect the host is asked to perform.
type EffectKind string

const (
	// EffectSendText sends a new message.
	EffectSendText EffectKind = "send_text"

	// EffectSendChoices sends a new message with choice buttons.
	EffectSendChoices EffectKind = "send_choices"

	// EffectEditMessage replaces the text of a previously sent message and drops its buttons.
	EffectEditMessage EffectKind = "edit_message"

	// EffectSubmit hands the completed application to the record store.
	// It is executed by the host and never reaches a transport.
	EffectSubmit EffectKind = "submit"
)

// Choice is one labelled button carrying an opaque payload.
type Choice struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// Effect is a structural description of an outbound action.
type Effect struct {
	Kind EffectKind `json:"kind"`

	Text string `json:"text,omitempty"`

	// Markdown marks Text as carrying lightweight emphasis markup.
	Markdown bool `json:"markdown,omitempty"`

	// Choices are laid out as rows of buttons.
	Choices [][]Choice `json:"choices,omitempty"`

	// MessageID is the message to edit (EffectEditMessage). Transports send a new
	// message instead when it is zero.
	MessageID int `json:"message_id,omitempty"`

	// Application is the record to store (EffectSubmit).
	Application *Application `json:"application,omitempty"`
}

// Outbound filters out host-only effects, returning what a transport must render.
func Outbound(effects []Effect) []Effect {
	out := make([]Effect, 0, len(effects))
	for _, e := range effects {
		if e.Kind == EffectSubmit {
			continue
		}
		out = append(out, e)
	}
	return out
}
