package runtime_test

import (
	"strings"
	"testing"

	"github.com/aretw0/rapidhire/internal/runtime"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := runtime.DefaultMaxInputSize
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runtime.SanitizeInput(strings.Repeat("a", tt.size), 0)
			if tt.wantErr {
				assert.ErrorIs(t, err, runtime.ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Ana María", "Ana María"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mAna\x1b[0m", "[31mAna[0m"},
		{"Null Byte", "+2010\x001234", "+20101234"},
		{"Bell", "Ding\x07", "Ding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runtime.SanitizeInput(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := runtime.SanitizeInput("Ana\xff", 0)
	assert.ErrorIs(t, err, runtime.ErrInvalidUTF8)
}

func TestEngine_RejectsUnreadableInput(t *testing.T) {
	eng := runtime.NewEngine(runtime.WithMaxInputSize(8))
	state := stateAt(t, eng, domain.StageAwaitingName)

	for _, input := range []string{"much too long a name", "Ana\xff"} {
		res := drive(t, eng, state, text(input))
		assert.Equal(t, state, res.State, "state must be unchanged")
		require.NotNil(t, res.Reject)
		assert.Equal(t, domain.RejectInvalidInput, res.Reject.Reason)
		require.Len(t, res.Effects, 1)
		assert.Equal(t, domain.EffectSendText, res.Effects[0].Kind)
		assert.Nil(t, res.Transition)
	}

	res := drive(t, eng, state, text("Ana\x1b"))
	assert.Equal(t, "Ana", res.State.Application.Name, "control characters are stripped before storing")
	assert.Equal(t, domain.StageAwaitingGraduationYear, res.State.Stage)
}
