package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/rapidhire/pkg/domain"
)

// Button labels of the phone confirmation step.
const (
	LabelPhoneConfirm = "✅ Yes, This is Correct"
	LabelPhoneEdit    = "❌ Edit Number"
)

const (
	textIntro = "👋 Welcome to the *Rapid-Hire Bot*! We specialize in connecting top talent with leading Multinational BPO Companies.\n\n" +
		"We are actively recruiting for various Call Center & Customer Service roles across all languages.\n\n" +
		"✨ *Featured Partners Include:* Teleperformance, Concentrix, and other reputable BPO firms.\n\n" +
		"This quick process will help us assess your profile for immediate job matching.\n\n" +
		"To start, please enter your *Full Name*:"

	textInvalidYear      = "Invalid year. Please enter a 4-digit number (e.g., 2024)."
	textLanguagePrompt   = "Which *Target Language* are you applying for?"
	textLanguageReprompt = "Please choose your *Target Language* using the buttons below:"
	textPhonePrompt      = "Please enter your *WhatsApp Phone Number* for contact (e.g., +2010xxxxxxxx):"
	textPhoneReentry     = "Please re-enter your *WhatsApp Phone Number* to ensure it is correct:"
	textCancelled        = "Application process cancelled. You can restart anytime with /start."
	textNoSession        = "There is no application in progress. Send /start to begin."
	textInvalidInput     = "Sorry, that message could not be read. Please send a shorter plain-text reply."
)

// markdownEscaper escapes the characters that carry meaning in Telegram's legacy Markdown.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// escape makes user-supplied text safe to embed in a Markdown message.
// Telegram strips the backslashes, so the candidate sees the value literally.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func textThanks(name string) string {
	return fmt.Sprintf("Thank you, %s.\n\nWhat is your *Graduation Year*? (e.g., 2024)", escape(name))
}

func textLanguageSelected(lang domain.Language) string {
	return fmt.Sprintf("You selected: *%s*.\n\nNow, please enter your *WhatsApp Phone Number* for contact (e.g., +2010xxxxxxxx):", escape(string(lang)))
}

func textConfirmPhone(phone string) string {
	return fmt.Sprintf("You entered: *%s*.\n\n"+
		"Please confirm your number. This is crucial as the HR team will contact you via WhatsApp using this number.", escape(phone))
}

func textCompleted(phone string) string {
	return fmt.Sprintf("🎉 *Application Received!*\n\n"+
		"Your profile has been successfully submitted for review.\n\n"+
		"➡️ *NEXT STEP (VITAL):* An HR representative will contact you on the WhatsApp number you provided "+
		"(*%s*) *within 24 hours* to request a *1-minute self-introduction voice note* for final language assessment.\n\n"+
		"This step is vital for your application to proceed. Thank you and good luck! 🚀", escape(phone))
}

// languageChoices lays the languages out two per row.
func languageChoices() [][]domain.Choice {
	var rows [][]domain.Choice
	for i := 0; i < len(domain.Languages); i += 2 {
		end := min(i+2, len(domain.Languages))
		row := make([]domain.Choice, 0, 2)
		for _, lang := range domain.Languages[i:end] {
			row = append(row, domain.Choice{Label: string(lang), Payload: domain.LanguagePayload(lang)})
		}
		rows = append(rows, row)
	}
	return rows
}

func phoneChoices() [][]domain.Choice {
	return [][]domain.Choice{
		{{Label: LabelPhoneConfirm, Payload: domain.PhonePayload(domain.PhoneConfirm)}},
		{{Label: LabelPhoneEdit, Payload: domain.PhonePayload(domain.PhoneEdit)}},
	}
}

func sendText(text string) domain.Effect {
	return domain.Effect{Kind: domain.EffectSendText, Text: text, Markdown: true}
}

func sendChoices(text string, choices [][]domain.Choice) domain.Effect {
	return domain.Effect{Kind: domain.EffectSendChoices, Text: text, Markdown: true, Choices: choices}
}

func editMessage(messageID int, text string) domain.Effect {
	return domain.Effect{Kind: domain.EffectEditMessage, Text: text, Markdown: true, MessageID: messageID}
}
