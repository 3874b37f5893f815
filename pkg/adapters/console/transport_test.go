package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/rapidhire"
	"github.com/aretw0/rapidhire/pkg/adapters/console"
	"github.com/aretw0/rapidhire/pkg/adapters/memory"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBot(t *testing.T) (*rapidhire.Bot, *memory.Applications) {
	t.Helper()
	apps := memory.NewApplications()
	bot, err := rapidhire.New(rapidhire.WithApplicationStore(apps))
	require.NoError(t, err)
	return bot, apps
}

func TestTransport_FullDialogue(t *testing.T) {
	bot, apps := newBot(t)
	in := strings.NewReader(strings.Join([]string{
		"Ana",
		"2023",
		"3",
		"+201012345678",
		"2",
		"+201099999999",
		"phone:confirm",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, console.New(bot, in, &out).Run(context.Background()))

	records := apps.Records()
	require.Len(t, records, 1)
	assert.Equal(t, domain.Application{
		Name:           "Ana",
		GraduationYear: "2023",
		TargetLanguage: domain.LanguageSpanish,
		Phone:          "+201099999999",
		SubmittedAt:    records[0].SubmittedAt,
	}, records[0])

	text := out.String()
	assert.Contains(t, text, "[1] English")
	assert.Contains(t, text, "[5] Italian")
	assert.Contains(t, text, "Application Received")
}

func TestTransport_NumberWithoutButtonsIsText(t *testing.T) {
	bot, _ := newBot(t)
	in := strings.NewReader("1\n")
	var out bytes.Buffer

	sessions := bot.Sessions()
	require.NoError(t, console.New(bot, in, &out, console.WithSessionID("9:9")).Run(context.Background()))

	state, err := sessions.Load(context.Background(), "9:9")
	require.NoError(t, err)
	assert.Equal(t, "1", state.Application.Name)
}

func TestTransport_Quit(t *testing.T) {
	bot, apps := newBot(t)
	in := strings.NewReader("Ana\n/quit\n2023\n")
	var out bytes.Buffer

	require.NoError(t, console.New(bot, in, &out).Run(context.Background()))

	state, err := bot.Sessions().Load(context.Background(), console.DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageAwaitingGraduationYear, state.Stage)
	assert.Empty(t, apps.Records())
}

func TestTransport_Cancel(t *testing.T) {
	bot, _ := newBot(t)
	in := strings.NewReader("Ana\n/cancel\n")
	var out bytes.Buffer

	require.NoError(t, console.New(bot, in, &out).Run(context.Background()))
	assert.Contains(t, out.String(), "cancelled")

	_, err := bot.Sessions().Load(context.Background(), console.DefaultSessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	console.PrintBanner(&out)
	assert.NotEmpty(t, out.String())
	assert.False(t, console.IsTerminal(&out))
}
