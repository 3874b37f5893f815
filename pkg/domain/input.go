package domain

import (
	"strings"
	"time"
)

// EventKind classifies inbound user actions.
type EventKind string

const (
	EventStart  EventKind = "start"
	EventText   EventKind = "text"
	EventChoice EventKind = "choice"
	EventCancel EventKind = "cancel"
)

// Event is a single inbound action delivered by a transport.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`

	ChatID int64 `json:"chat_id,omitempty"`
	UserID int64 `json:"user_id,omitempty"`

	// Text is the free-text body (EventText).
	Text string `json:"text,omitempty"`

	// Payload is the opaque token of the selected button (EventChoice).
	Payload string `json:"payload,omitempty"`

	// MessageID is the message the selected button belongs to, if known.
	MessageID int `json:"message_id,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
}

// Choice payload namespaces.
const (
	PayloadLanguage = "language"
	PayloadPhone    = "phone"

	PhoneConfirm = "confirm"
	PhoneEdit    = "edit"

	payloadSeparator = ":"
)

// LanguagePayload builds the button payload selecting lang.
func LanguagePayload(lang Language) string {
	return PayloadLanguage + payloadSeparator + string(lang)
}

// PhonePayload builds the button payload for a phone confirmation action.
func PhonePayload(action string) string {
	return PayloadPhone + payloadSeparator + action
}

// ParsePayload splits a payload into namespace and value.
func ParsePayload(payload string) (namespace, value string, err error) {
	namespace, value, ok := strings.Cut(payload, payloadSeparator)
	if !ok || namespace == "" || value == "" {
		return "", "", ErrInvalidPayload
	}
	return namespace, value, nil
}
