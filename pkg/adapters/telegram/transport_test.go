package telegram_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/rapidhire"
	"github.com/aretw0/rapidhire/pkg/adapters/memory"
	"github.com/aretw0/rapidhire/pkg/adapters/telegram"
	"github.com/aretw0/rapidhire/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAPI struct {
	mu       sync.Mutex
	updates  chan tgbotapi.Update
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	stopped  bool
	sendErr  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 64)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) Sent() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

type handlerFunc func(ctx context.Context, ev domain.Event) ([]domain.Effect, error)

func (h handlerFunc) Handle(ctx context.Context, ev domain.Event) ([]domain.Effect, error) {
	return h(ctx, ev)
}

func textUpdate(id int, chatID, userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: userID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{UpdateID: id, Message: msg}
}

func callbackUpdate(id int, chatID, userID int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cq-1",
			From: &tgbotapi.User{ID: userID},
			Message: &tgbotapi.Message{
				MessageID: messageID,
				Chat:      &tgbotapi.Chat{ID: chatID},
			},
			Data: data,
		},
	}
}

func TestTranslate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   domain.Event
		ok     bool
	}{
		{
			name:   "start command",
			update: textUpdate(1, 100, 7, "/start"),
			want:   domain.Event{Kind: domain.EventStart, SessionID: "100:7", ChatID: 100, UserID: 7, MessageID: 1, ReceivedAt: now},
			ok:     true,
		},
		{
			name:   "cancel command",
			update: textUpdate(2, 100, 7, "/cancel"),
			want:   domain.Event{Kind: domain.EventCancel, SessionID: "100:7", ChatID: 100, UserID: 7, MessageID: 2, ReceivedAt: now},
			ok:     true,
		},
		{
			name:   "free text",
			update: textUpdate(3, -500, 8, "Ana Maria"),
			want:   domain.Event{Kind: domain.EventText, SessionID: "-500:8", ChatID: -500, UserID: 8, Text: "Ana Maria", MessageID: 3, ReceivedAt: now},
			ok:     true,
		},
		{
			name:   "button",
			update: callbackUpdate(4, 100, 7, 42, "language:German"),
			want:   domain.Event{Kind: domain.EventChoice, SessionID: "100:7", ChatID: 100, UserID: 7, Payload: "language:German", MessageID: 42, ReceivedAt: now},
			ok:     true,
		},
		{name: "unknown command", update: textUpdate(5, 100, 7, "/help")},
		{name: "empty update", update: tgbotapi.Update{UpdateID: 6}},
		{
			name:   "message without text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}}},
		},
		{
			name:   "channel post without sender",
			update: tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := telegram.Translate(tt.update, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTranslate_SameUserDifferentChats(t *testing.T) {
	a, _ := telegram.Translate(textUpdate(1, 100, 7, "x"), time.Time{})
	b, _ := telegram.Translate(textUpdate(2, 200, 7, "x"), time.Time{})
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestRender(t *testing.T) {
	t.Run("markdown text", func(t *testing.T) {
		c, err := telegram.Render(9, domain.Effect{Kind: domain.EffectSendText, Text: "*hi*", Markdown: true})
		require.NoError(t, err)
		msg := c.(tgbotapi.MessageConfig)
		assert.Equal(t, int64(9), msg.ChatID)
		assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	})

	t.Run("plain text", func(t *testing.T) {
		c, err := telegram.Render(9, domain.Effect{Kind: domain.EffectSendText, Text: "hi"})
		require.NoError(t, err)
		assert.Empty(t, c.(tgbotapi.MessageConfig).ParseMode)
	})

	t.Run("choices", func(t *testing.T) {
		c, err := telegram.Render(9, domain.Effect{
			Kind: domain.EffectSendChoices,
			Text: "pick",
			Choices: [][]domain.Choice{
				{{Label: "English", Payload: "language:English"}, {Label: "German", Payload: "language:German"}},
				{{Label: "Italian", Payload: "language:Italian"}},
			},
		})
		require.NoError(t, err)
		markup := c.(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		require.Len(t, markup.InlineKeyboard, 2)
		require.Len(t, markup.InlineKeyboard[0], 2)
		assert.Equal(t, "German", markup.InlineKeyboard[0][1].Text)
		require.NotNil(t, markup.InlineKeyboard[1][0].CallbackData)
		assert.Equal(t, "language:Italian", *markup.InlineKeyboard[1][0].CallbackData)
	})

	t.Run("edit", func(t *testing.T) {
		c, err := telegram.Render(9, domain.Effect{Kind: domain.EffectEditMessage, Text: "done", MessageID: 31, Markdown: true})
		require.NoError(t, err)
		edit := c.(tgbotapi.EditMessageTextConfig)
		assert.Equal(t, 31, edit.MessageID)
		assert.Equal(t, "done", edit.Text)
		assert.Equal(t, tgbotapi.ModeMarkdown, edit.ParseMode)
	})

	t.Run("edit without target falls back to send", func(t *testing.T) {
		c, err := telegram.Render(9, domain.Effect{Kind: domain.EffectEditMessage, Text: "done"})
		require.NoError(t, err)
		assert.IsType(t, tgbotapi.MessageConfig{}, c)
	})

	t.Run("submit is not renderable", func(t *testing.T) {
		_, err := telegram.Render(9, domain.Effect{Kind: domain.EffectSubmit})
		assert.Error(t, err)
	})
}

func TestProcess_AnswersCallbacks(t *testing.T) {
	api := newFakeAPI()
	tr := telegram.New(api, handlerFunc(func(context.Context, domain.Event) ([]domain.Effect, error) {
		return nil, nil
	}))

	tr.Process(context.Background(), callbackUpdate(1, 100, 7, 5, "phone:confirm"))

	require.Len(t, api.requests, 1)
	answer, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cq-1", answer.CallbackQueryID)
}

func TestProcess_HandlerErrorSendsNothing(t *testing.T) {
	api := newFakeAPI()
	tr := telegram.New(api, handlerFunc(func(context.Context, domain.Event) ([]domain.Effect, error) {
		return nil, errors.New("redis down")
	}))

	tr.Process(context.Background(), textUpdate(1, 100, 7, "hello"))
	assert.Empty(t, api.Sent())
}

func TestProcess_SendFailureContinues(t *testing.T) {
	api := newFakeAPI()
	api.sendErr = errors.New("forbidden")
	tr := telegram.New(api, handlerFunc(func(context.Context, domain.Event) ([]domain.Effect, error) {
		return []domain.Effect{
			{Kind: domain.EffectSendText, Text: "a"},
			{Kind: domain.EffectSendText, Text: "b"},
		}, nil
	}))

	tr.Process(context.Background(), textUpdate(1, 100, 7, "hello"))
	assert.Len(t, api.Sent(), 2)
}

func TestRun_FullDialogue(t *testing.T) {
	api := newFakeAPI()
	apps := memory.NewApplications()
	bot, err := rapidhire.New(rapidhire.WithApplicationStore(apps))
	require.NoError(t, err)

	tr := telegram.New(api, bot, telegram.WithWorkers(4))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	api.updates <- textUpdate(1, 100, 7, "/start")
	api.updates <- textUpdate(2, 100, 7, "Ana")
	api.updates <- textUpdate(3, 100, 7, "2023")
	api.updates <- callbackUpdate(4, 100, 7, 3, "language:Spanish")
	api.updates <- textUpdate(5, 100, 7, "+201012345678")
	api.updates <- callbackUpdate(6, 100, 7, 5, "phone:confirm")

	require.Eventually(t, func() bool { return len(apps.Records()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(api.Sent()) == 6 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	sent := api.Sent()
	last, ok := sent[len(sent)-1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 5, last.MessageID)
	assert.Contains(t, last.Text, "+201012345678")

	api.mu.Lock()
	assert.True(t, api.stopped)
	api.mu.Unlock()
}

func TestWebhookHandler(t *testing.T) {
	api := newFakeAPI()
	var got []domain.Event
	var mu sync.Mutex
	tr := telegram.New(api, handlerFunc(func(_ context.Context, ev domain.Event) ([]domain.Effect, error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev)
		return []domain.Effect{{Kind: domain.EffectSendText, Text: "ok"}}, nil
	}), telegram.WithSecretToken("s3cret"))

	h := tr.WebhookHandler()

	body, err := json.Marshal(textUpdate(1, 100, 7, "/start"))
	require.NoError(t, err)

	t.Run("rejects missing secret", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects GET", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/telegram/webhook", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader([]byte("{")))
		req.Header.Set(telegram.SecretTokenHeader, "s3cret")
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("processes update", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body))
		req.Header.Set(telegram.SecretTokenHeader, "s3cret")
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, got, 1)
		assert.Equal(t, domain.EventStart, got[0].Kind)
		assert.Len(t, api.Sent(), 1)
	})
}

func TestRegisterCommands(t *testing.T) {
	api := newFakeAPI()
	require.NoError(t, telegram.New(api, nil).RegisterCommands())

	require.Len(t, api.requests, 1)
	cfg, ok := api.requests[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	assert.Len(t, cfg.Commands, 2)
}
