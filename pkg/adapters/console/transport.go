// Package console runs the dialogue in a terminal, one candidate at a time.
//
// Lines starting with a slash are commands (/start, /cancel, /quit). When the bot
// offers buttons they are listed with numbers; typing the number selects the button.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/aretw0/rapidhire/pkg/domain"
)

// DefaultSessionID is used when no session is configured.
const DefaultSessionID = "0:0"

// Handler processes one event. *rapidhire.Bot satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) ([]domain.Effect, error)
}

// Transport reads candidate input from a reader and prints the bot's replies.
type Transport struct {
	handler   Handler
	in        io.Reader
	out       io.Writer
	sessionID string
	render    Renderer
	logger    *slog.Logger

	pending   []domain.Choice
	messageID int
}

// Option configures the Transport.
type Option func(*Transport)

// WithSessionID sets the session key of the terminal user.
func WithSessionID(id string) Option {
	return func(t *Transport) {
		if id != "" {
			t.sessionID = id
		}
	}
}

// WithRenderer replaces the plain renderer.
func WithRenderer(r Renderer) Option {
	return func(t *Transport) {
		t.render = r
	}
}

// WithLogger configures the transport logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// New creates a console transport.
func New(handler Handler, in io.Reader, out io.Writer, opts ...Option) *Transport {
	t := &Transport{
		handler:   handler,
		in:        in,
		out:       out,
		sessionID: DefaultSessionID,
		render:    PlainRenderer,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run starts a dialogue and processes lines until EOF, /quit or ctx cancellation.
func (t *Transport) Run(ctx context.Context) error {
	if err := t.dispatch(ctx, domain.Event{Kind: domain.EventStart}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(t.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if err := t.dispatch(ctx, t.parse(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parse maps a line to an event, resolving numbered buttons.
func (t *Transport) parse(line string) domain.Event {
	switch line {
	case "/start":
		return domain.Event{Kind: domain.EventStart}
	case "/cancel":
		return domain.Event{Kind: domain.EventCancel}
	}

	if len(t.pending) > 0 {
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(t.pending) {
			return domain.Event{Kind: domain.EventChoice, Payload: t.pending[n-1].Payload, MessageID: t.messageID}
		}
		for _, c := range t.pending {
			if strings.EqualFold(line, c.Payload) {
				return domain.Event{Kind: domain.EventChoice, Payload: c.Payload, MessageID: t.messageID}
			}
		}
	}
	return domain.Event{Kind: domain.EventText, Text: line}
}

func (t *Transport) dispatch(ctx context.Context, ev domain.Event) error {
	ev.SessionID = t.sessionID
	ev.ReceivedAt = time.Now()

	effects, err := t.handler.Handle(ctx, ev)
	if err != nil {
		return fmt.Errorf("failed to handle input: %w", err)
	}
	for _, eff := range effects {
		t.show(eff)
	}
	return nil
}

func (t *Transport) show(eff domain.Effect) {
	out, err := t.render(eff.Text)
	if err != nil {
		t.logger.Warn("Failed to render message", "err", err)
		out = eff.Text + "\n"
	}
	fmt.Fprint(t.out, out)

	switch eff.Kind {
	case domain.EffectSendChoices:
		t.messageID++
		t.pending = nil
		for _, row := range eff.Choices {
			t.pending = append(t.pending, row...)
		}
		for i, c := range t.pending {
			fmt.Fprintf(t.out, "  [%d] %s\n", i+1, c.Label)
		}
		fmt.Fprintln(t.out)
	case domain.EffectEditMessage:
		// The buttons of the edited message are gone.
		t.pending = nil
	}
}
