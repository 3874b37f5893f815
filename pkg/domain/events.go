package domain

import (
	"context"
	"time"
)

// TransitionEvent is emitted whenever a session changes stage.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	From      Stage     `json:"from,omitempty"`
	To        Stage     `json:"to"`
	Trigger   EventKind `json:"trigger"`
}

// RejectEvent is emitted when an input is refused without a stage change.
type RejectEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Stage     Stage     `json:"stage,omitempty"`
	Reason    string    `json:"reason"`
}

// SubmitEvent reports the outcome of a record store append.
type SubmitEvent struct {
	Timestamp   time.Time     `json:"timestamp"`
	SessionID   string        `json:"session_id"`
	Application Application   `json:"application"`
	OK          bool          `json:"ok"`
	Duration    time.Duration `json:"duration"`
	Err         error         `json:"-"`
}

// Reject reasons.
const (
	RejectInvalidYear     = "invalid_year"
	RejectEmptyPhone      = "empty_phone"
	RejectExpectedChoice  = "expected_choice"
	RejectUnexpectedInput = "unexpected_input"
	RejectNoSession       = "no_session"
	RejectInvalidInput    = "invalid_input"
)

// LifecycleHooks defines callbacks for dialogue observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnReject     func(context.Context, *RejectEvent)
	OnSubmit     func(context.Context, *SubmitEvent)
}

// Merge returns hooks that call h first, then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnReject:     chain(h.OnReject, other.OnReject),
		OnSubmit:     chain(h.OnSubmit, other.OnSubmit),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
