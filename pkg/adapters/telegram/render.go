package telegram

import (
	"fmt"

	"github.com/aretw0/rapidhire/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Render converts an outbound effect into a Telegram request for chatID.
// An edit without a target message degrades to a new message.
func Render(chatID int64, eff domain.Effect) (tgbotapi.Chattable, error) {
	parseMode := ""
	if eff.Markdown {
		parseMode = tgbotapi.ModeMarkdown
	}

	switch eff.Kind {
	case domain.EffectSendText:
		msg := tgbotapi.NewMessage(chatID, eff.Text)
		msg.ParseMode = parseMode
		return msg, nil

	case domain.EffectSendChoices:
		msg := tgbotapi.NewMessage(chatID, eff.Text)
		msg.ParseMode = parseMode
		msg.ReplyMarkup = keyboard(eff.Choices)
		return msg, nil

	case domain.EffectEditMessage:
		if eff.MessageID == 0 {
			msg := tgbotapi.NewMessage(chatID, eff.Text)
			msg.ParseMode = parseMode
			return msg, nil
		}
		edit := tgbotapi.NewEditMessageText(chatID, eff.MessageID, eff.Text)
		edit.ParseMode = parseMode
		return edit, nil
	}
	return nil, fmt.Errorf("effect %q cannot be rendered", eff.Kind)
}

func keyboard(choices [][]domain.Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, row := range choices {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, c := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Payload))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
