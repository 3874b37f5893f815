package telegram

import (
	"fmt"
	"time"

	"github.com/aretw0/rapidhire/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands understood by the bot.
const (
	CommandStart  = "start"
	CommandCancel = "cancel"
)

// SessionKey isolates dialogues per chat and per user within the chat.
func SessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

// Translate converts an update into a domain event.
// It reports false for updates the bot does not react to: non-text messages,
// unknown commands, and updates without a sender.
func Translate(update tgbotapi.Update, now time.Time) (domain.Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		return translateCallback(update.CallbackQuery, now)
	case update.Message != nil:
		return translateMessage(update.Message, now)
	}
	return domain.Event{}, false
}

func translateMessage(msg *tgbotapi.Message, now time.Time) (domain.Event, bool) {
	if msg.From == nil || msg.Chat == nil || msg.Text == "" {
		return domain.Event{}, false
	}

	ev := domain.Event{
		SessionID:  SessionKey(msg.Chat.ID, msg.From.ID),
		ChatID:     msg.Chat.ID,
		UserID:     msg.From.ID,
		MessageID:  msg.MessageID,
		ReceivedAt: now,
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case CommandStart:
			ev.Kind = domain.EventStart
		case CommandCancel:
			ev.Kind = domain.EventCancel
		default:
			return domain.Event{}, false
		}
		return ev, true
	}

	ev.Kind = domain.EventText
	ev.Text = msg.Text
	return ev, true
}

func translateCallback(cq *tgbotapi.CallbackQuery, now time.Time) (domain.Event, bool) {
	if cq.From == nil {
		return domain.Event{}, false
	}

	// Buttons on inline-mode messages carry no chat; the private chat id equals the user id.
	chatID := cq.From.ID
	messageID := 0
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}

	return domain.Event{
		Kind:       domain.EventChoice,
		SessionID:  SessionKey(chatID, cq.From.ID),
		ChatID:     chatID,
		UserID:     cq.From.ID,
		Payload:    cq.Data,
		MessageID:  messageID,
		ReceivedAt: now,
	}, true
}
