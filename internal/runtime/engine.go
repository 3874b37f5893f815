package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/looplab/fsm"
)

// Engine is the dialogue state machine.
// Step is pure: it never mutates its input state and performs no I/O. Side-effects
// are returned as domain.Effect values for the host to execute.
type Engine struct {
	events   fsm.Events
	now      func() time.Time
	logger   *slog.Logger
	maxInput int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source used to stamp states.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger configures debug logging of steps.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxInputSize caps the byte length of a text message.
func WithMaxInputSize(n int) EngineOption {
	return func(e *Engine) {
		e.maxInput = n
	}
}

// NewEngine creates an engine with the recruitment flow.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		events:   flowEvents(),
		now:      time.Now,
		logger:   logging.NewNop(),
		maxInput: DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one Step.
type Result struct {
	// State is the next state. Nil means there is no session to keep.
	State *domain.State

	// Effects are the outbound actions, in order.
	Effects []domain.Effect

	// Transition is set when the stage changed (or a session started).
	Transition *domain.TransitionEvent

	// Reject is set when the input was refused without a stage change.
	Reject *domain.RejectEvent
}

// Step applies ev to current and returns the next state and effects.
// current is nil when the session has no dialogue in progress.
func (e *Engine) Step(ctx context.Context, current *domain.State, ev domain.Event) (Result, error) {
	now := e.now()
	if current != nil && current.Stage.Terminal() {
		current = nil
	}

	e.logger.Debug("step",
		"session_id", ev.SessionID,
		"kind", ev.Kind,
		"stage", stageOf(current),
	)

	if ev.Kind == domain.EventText {
		text, err := SanitizeInput(ev.Text, e.maxInput)
		if err != nil {
			e.logger.Debug("input rejected", "session_id", ev.SessionID, "error", err)
			return Result{
				State:   current.Clone(),
				Effects: []domain.Effect{{Kind: domain.EffectSendText, Text: textInvalidInput}},
				Reject:  reject(ev, now, stageOf(current), domain.RejectInvalidInput),
			}, nil
		}
		ev.Text = text
	}

	switch ev.Kind {
	case domain.EventStart:
		return e.start(current, ev, now), nil
	case domain.EventCancel:
		return e.cancel(ctx, current, ev, now)
	case domain.EventText, domain.EventChoice:
		if current == nil {
			return e.noSession(ev, now), nil
		}
		return e.advance(ctx, current, ev, now)
	default:
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, ev.Kind)
	}
}

// start begins a fresh, empty record, discarding any dialogue in progress.
func (e *Engine) start(current *domain.State, ev domain.Event, now time.Time) Result {
	next := domain.NewState(ev.SessionID, now)
	return Result{
		State:      next,
		Effects:    []domain.Effect{sendText(textIntro)},
		Transition: transition(ev, now, stageOf(current), next.Stage),
	}
}

func (e *Engine) cancel(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	res := Result{Effects: []domain.Effect{{Kind: domain.EffectSendText, Text: textCancelled}}}
	if current == nil {
		return res, nil
	}

	to, err := e.fire(ctx, current.Stage, FlowCancel)
	if err != nil {
		return Result{}, err
	}
	next := e.moved(current, to, now)
	next.Application = domain.Application{}
	res.State = next
	res.Transition = transition(ev, now, current.Stage, to)
	return res, nil
}

func (e *Engine) noSession(ev domain.Event, now time.Time) Result {
	res := Result{Reject: reject(ev, now, "", domain.RejectNoSession)}
	// A stale button from a finished dialogue is silently ignored.
	if ev.Kind == domain.EventText {
		res.Effects = []domain.Effect{{Kind: domain.EffectSendText, Text: textNoSession}}
	}
	return res
}

func (e *Engine) advance(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	switch current.Stage {
	case domain.StageAwaitingName:
		return e.onName(ctx, current, ev, now)
	case domain.StageAwaitingGraduationYear:
		return e.onGraduationYear(ctx, current, ev, now)
	case domain.StageAwaitingTargetLanguage:
		return e.onLanguage(ctx, current, ev, now)
	case domain.StageAwaitingPhone:
		return e.onPhone(ctx, current, ev, now)
	case domain.StageAwaitingPhoneConfirmation:
		return e.onPhoneConfirmation(ctx, current, ev, now)
	case domain.StageCompleted, domain.StageCancelled:
		return e.noSession(ev, now), nil
	default:
		return Result{}, fmt.Errorf("%w: unknown stage %q", ErrIllegalTransition, current.Stage)
	}
}

func (e *Engine) onName(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	if ev.Kind != domain.EventText {
		return e.ignore(current, ev, now), nil
	}

	next, res, err := e.step(ctx, current, ev, now, FlowNameReceived)
	if err != nil {
		return Result{}, err
	}
	next.Application.Name = ev.Text
	res.Effects = []domain.Effect{sendText(textThanks(ev.Text))}
	return res, nil
}

func (e *Engine) onGraduationYear(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	if ev.Kind != domain.EventText {
		return e.ignore(current, ev, now), nil
	}

	if !ValidGraduationYear(ev.Text) {
		return Result{
			State:   current.Clone(),
			Effects: []domain.Effect{{Kind: domain.EffectSendText, Text: textInvalidYear}},
			Reject:  reject(ev, now, current.Stage, domain.RejectInvalidYear),
		}, nil
	}

	next, res, err := e.step(ctx, current, ev, now, FlowYearAccepted)
	if err != nil {
		return Result{}, err
	}
	next.Application.GraduationYear = ev.Text
	res.Effects = []domain.Effect{sendChoices(textLanguagePrompt, languageChoices())}
	return res, nil
}

func (e *Engine) onLanguage(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	if ev.Kind == domain.EventText {
		return Result{
			State:   current.Clone(),
			Effects: []domain.Effect{sendChoices(textLanguageReprompt, languageChoices())},
			Reject:  reject(ev, now, current.Stage, domain.RejectExpectedChoice),
		}, nil
	}

	ns, value, err := domain.ParsePayload(ev.Payload)
	if err != nil || ns != domain.PayloadLanguage {
		return e.ignore(current, ev, now), nil
	}
	lang, ok := domain.ParseLanguage(value)
	if !ok {
		return Result{
			State:   current.Clone(),
			Effects: []domain.Effect{sendChoices(textLanguageReprompt, languageChoices())},
			Reject:  reject(ev, now, current.Stage, domain.RejectUnexpectedInput),
		}, nil
	}

	next, res, err := e.step(ctx, current, ev, now, FlowLanguageSelected)
	if err != nil {
		return Result{}, err
	}
	next.Application.TargetLanguage = lang
	res.Effects = []domain.Effect{editMessage(ev.MessageID, textLanguageSelected(lang))}
	return res, nil
}

func (e *Engine) onPhone(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	if ev.Kind != domain.EventText {
		return e.ignore(current, ev, now), nil
	}

	if !ValidPhone(ev.Text) {
		return Result{
			State:   current.Clone(),
			Effects: []domain.Effect{sendText(textPhonePrompt)},
			Reject:  reject(ev, now, current.Stage, domain.RejectEmptyPhone),
		}, nil
	}

	next, res, err := e.step(ctx, current, ev, now, FlowPhoneReceived)
	if err != nil {
		return Result{}, err
	}
	next.Application.Phone = ev.Text
	res.Effects = []domain.Effect{sendChoices(textConfirmPhone(ev.Text), phoneChoices())}
	return res, nil
}

func (e *Engine) onPhoneConfirmation(ctx context.Context, current *domain.State, ev domain.Event, now time.Time) (Result, error) {
	if ev.Kind == domain.EventText {
		return Result{
			State:   current.Clone(),
			Effects: []domain.Effect{sendChoices(textConfirmPhone(current.Application.Phone), phoneChoices())},
			Reject:  reject(ev, now, current.Stage, domain.RejectExpectedChoice),
		}, nil
	}

	ns, value, err := domain.ParsePayload(ev.Payload)
	if err != nil || ns != domain.PayloadPhone {
		return e.ignore(current, ev, now), nil
	}

	switch value {
	case domain.PhoneConfirm:
		if !current.Application.Complete() {
			return Result{}, fmt.Errorf("session %s: %w", current.SessionID, domain.ErrIncompleteApplication)
		}
		next, res, err := e.step(ctx, current, ev, now, FlowPhoneConfirmed)
		if err != nil {
			return Result{}, err
		}
		app := next.Application
		res.Effects = []domain.Effect{
			{Kind: domain.EffectSubmit, Application: &app},
			editMessage(ev.MessageID, textCompleted(app.Phone)),
		}
		return res, nil

	case domain.PhoneEdit:
		// The previous phone stays in the record until it is overwritten.
		_, res, err := e.step(ctx, current, ev, now, FlowPhoneEdit)
		if err != nil {
			return Result{}, err
		}
		res.Effects = []domain.Effect{editMessage(ev.MessageID, textPhoneReentry)}
		return res, nil

	default:
		return e.ignore(current, ev, now), nil
	}
}

// step fires event and returns the moved state with a Result pointing at it.
func (e *Engine) step(ctx context.Context, current *domain.State, ev domain.Event, now time.Time, event string) (*domain.State, Result, error) {
	to, err := e.fire(ctx, current.Stage, event)
	if err != nil {
		return nil, Result{}, err
	}
	next := e.moved(current, to, now)
	return next, Result{
		State:      next,
		Transition: transition(ev, now, current.Stage, to),
	}, nil
}

// ignore is the no-op answer to an input of the wrong shape: nothing is sent and
// nothing changes.
func (e *Engine) ignore(current *domain.State, ev domain.Event, now time.Time) Result {
	return Result{
		State:  current.Clone(),
		Reject: reject(ev, now, current.Stage, domain.RejectUnexpectedInput),
	}
}

func (e *Engine) moved(current *domain.State, to domain.Stage, now time.Time) *domain.State {
	next := current.Clone()
	next.Stage = to
	next.UpdatedAt = now
	next.History = append(next.History, to)
	return next
}

func transition(ev domain.Event, now time.Time, from, to domain.Stage) *domain.TransitionEvent {
	return &domain.TransitionEvent{
		Timestamp: now,
		SessionID: ev.SessionID,
		From:      from,
		To:        to,
		Trigger:   ev.Kind,
	}
}

func reject(ev domain.Event, now time.Time, stage domain.Stage, reason string) *domain.RejectEvent {
	return &domain.RejectEvent{
		Timestamp: now,
		SessionID: ev.SessionID,
		Stage:     stage,
		Reason:    reason,
	}
}

func stageOf(s *domain.State) domain.Stage {
	if s == nil {
		return ""
	}
	return s.Stage
}
