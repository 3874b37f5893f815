package domain

import "time"

// State represents the current snapshot of one dialogue session.
type State struct {
	// SessionID is the isolation key of the session (chat and user).
	SessionID string `json:"session_id"`

	// Stage is the step the dialogue is waiting on.
	Stage Stage `json:"stage"`

	// Application holds the fields collected so far.
	Application Application `json:"application"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// History tracks the stages visited, for debugging and session inspection.
	History []Stage `json:"history,omitempty"`

	// Sealed holds the encrypted state when the store is wrapped with encryption.
	// An envelope carries only the fields above it that identify the session.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewState creates a clean state waiting for the candidate's name.
func NewState(sessionID string, now time.Time) *State {
	return &State{
		SessionID: sessionID,
		Stage:     StageAwaitingName,
		StartedAt: now,
		UpdatedAt: now,
		History:   []Stage{StageAwaitingName},
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]Stage(nil), s.History...)
	c.Sealed = append([]byte(nil), s.Sealed...)
	return &c
}
