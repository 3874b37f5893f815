package domain

// Stage identifies the step of the dialogue a session is in.
type Stage string

const (
	StageAwaitingName              Stage = "awaiting_name"
	StageAwaitingGraduationYear    Stage = "awaiting_graduation_year"
	StageAwaitingTargetLanguage    Stage = "awaiting_target_language"
	StageAwaitingPhone             Stage = "awaiting_phone"
	StageAwaitingPhoneConfirmation Stage = "awaiting_phone_confirmation"
	StageCompleted                 Stage = "completed"
	StageCancelled                 Stage = "cancelled"
)

// Stages lists every stage in flow order, terminal stages last.
var Stages = []Stage{
	StageAwaitingName,
	StageAwaitingGraduationYear,
	StageAwaitingTargetLanguage,
	StageAwaitingPhone,
	StageAwaitingPhoneConfirmation,
	StageCompleted,
	StageCancelled,
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the dialogue has ended.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// ExpectsChoice reports whether the stage only accepts button selections.
func (s Stage) ExpectsChoice() bool {
	return s == StageAwaitingTargetLanguage || s == StageAwaitingPhoneConfirmation
}

func (s Stage) String() string {
	return string(s)
}
