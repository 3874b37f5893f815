package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/looplab/fsm"
)

// ErrIllegalTransition is returned when an input maps to a transition the flow does not allow.
var ErrIllegalTransition = errors.New("illegal transition")

// Flow event names. An input is validated first, then mapped to one of these.
const (
	FlowNameReceived     = "name_received"
	FlowYearAccepted     = "year_accepted"
	FlowLanguageSelected = "language_selected"
	FlowPhoneReceived    = "phone_received"
	FlowPhoneConfirmed   = "phone_confirmed"
	FlowPhoneEdit        = "phone_edit"
	FlowCancel           = "cancel"
)

// Transition is one edge of the dialogue flow.
type Transition struct {
	Event string
	From  domain.Stage
	To    domain.Stage
}

// flowEvents is the transition table of the dialogue.
func flowEvents() fsm.Events {
	open := make([]string, 0, len(domain.Stages))
	for _, s := range domain.Stages {
		if !s.Terminal() {
			open = append(open, string(s))
		}
	}

	return fsm.Events{
		{Name: FlowNameReceived, Src: []string{string(domain.StageAwaitingName)}, Dst: string(domain.StageAwaitingGraduationYear)},
		{Name: FlowYearAccepted, Src: []string{string(domain.StageAwaitingGraduationYear)}, Dst: string(domain.StageAwaitingTargetLanguage)},
		{Name: FlowLanguageSelected, Src: []string{string(domain.StageAwaitingTargetLanguage)}, Dst: string(domain.StageAwaitingPhone)},
		{Name: FlowPhoneReceived, Src: []string{string(domain.StageAwaitingPhone)}, Dst: string(domain.StageAwaitingPhoneConfirmation)},
		{Name: FlowPhoneConfirmed, Src: []string{string(domain.StageAwaitingPhoneConfirmation)}, Dst: string(domain.StageCompleted)},
		{Name: FlowPhoneEdit, Src: []string{string(domain.StageAwaitingPhoneConfirmation)}, Dst: string(domain.StageAwaitingPhone)},
		{Name: FlowCancel, Src: open, Dst: string(domain.StageCancelled)},
	}
}

// fire runs event against a machine positioned at from and returns the destination stage.
func (e *Engine) fire(ctx context.Context, from domain.Stage, event string) (domain.Stage, error) {
	machine := fsm.NewFSM(string(from), e.events, nil)
	if err := machine.Event(ctx, event); err != nil {
		return from, fmt.Errorf("%w: %s from %s: %v", ErrIllegalTransition, event, from, err)
	}
	return domain.Stage(machine.Current()), nil
}

// Transitions lists every edge of the flow, expanded per source stage.
func (e *Engine) Transitions() []Transition {
	var out []Transition
	for _, ev := range e.events {
		for _, src := range ev.Src {
			out = append(out, Transition{
				Event: ev.Name,
				From:  domain.Stage(src),
				To:    domain.Stage(ev.Dst),
			})
		}
	}
	return out
}
