package domain

import (
	"time"
)

const (
	// VoiceNoteStatus is recorded with every application. The voice note itself is
	// collected off-platform by HR over WhatsApp.
	VoiceNoteStatus = "Pending HR WhatsApp Contact"

	// MissingValue is written in place of an empty field.
	MissingValue = "N/A"

	// SubmissionTimeLayout is the default layout of the submission time column.
	SubmissionTimeLayout = "2006-01-02 15:04:05"
)

// Columns is the header of the application sheet, in row order.
var Columns = []string{
	"Name",
	"Graduation Year",
	"Target Language",
	"Phone",
	"Submission Time",
	"Voice Note Status",
}

// Application is the candidate record assembled during one dialogue.
type Application struct {
	Name           string    `json:"name,omitempty"`
	GraduationYear string    `json:"graduation_year,omitempty"`
	TargetLanguage Language  `json:"target_language,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	SubmittedAt    time.Time `json:"submitted_at,omitzero"`
}

// Complete reports whether every user-supplied field has been collected.
// The name is accepted verbatim, so only the remaining fields are checked for content.
func (a Application) Complete() bool {
	return a.GraduationYear != "" && a.TargetLanguage != "" && a.Phone != ""
}

// VoiceNoteStatus returns the fixed status stored alongside the record.
func (a Application) VoiceNoteStatus() string {
	return VoiceNoteStatus
}

// Row maps the application to the six sheet columns in order:
// name, graduation year, target language, phone, submission time, voice note status.
// Empty fields are replaced by MissingValue and a zero SubmittedAt defaults to now.
func (a Application) Row(now time.Time, layout string) []string {
	if layout == "" {
		layout = SubmissionTimeLayout
	}
	submitted := a.SubmittedAt
	if submitted.IsZero() {
		submitted = now
	}
	return []string{
		orMissing(a.Name),
		orMissing(a.GraduationYear),
		orMissing(string(a.TargetLanguage)),
		orMissing(a.Phone),
		submitted.Format(layout),
		VoiceNoteStatus,
	}
}

func orMissing(v string) string {
	if v == "" {
		return MissingValue
	}
	return v
}
