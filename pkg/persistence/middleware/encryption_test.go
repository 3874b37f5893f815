package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/rapidhire/pkg/adapters/memory"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/persistence/middleware"
	"github.com/aretw0/rapidhire/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func sampleState(sessionID string) *domain.State {
	s := domain.NewState(sessionID, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s.Stage = domain.StageAwaitingPhoneConfirmation
	s.Application = domain.Application{
		Name:           "Ana",
		GraduationYear: "2023",
		TargetLanguage: domain.LanguageSpanish,
		Phone:          "+201012345678",
	}
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	original := sampleState("42:7")
	require.NoError(t, store.Save(ctx, "42:7", original))

	raw, err := underlying.Load(ctx, "42:7")
	require.NoError(t, err)
	assert.Empty(t, raw.Application, "candidate data must not reach the backend in clear")
	assert.Empty(t, raw.History)
	assert.NotEmpty(t, raw.Sealed)
	assert.Equal(t, domain.StageAwaitingPhoneConfirmation, raw.Stage)
	assert.NotContains(t, string(raw.Sealed), "+201012345678")

	loaded, err := store.Load(ctx, "42:7")
	require.NoError(t, err)
	assert.Equal(t, original.Application, loaded.Application)
	assert.Equal(t, original.History, loaded.History)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, "s", sampleState("s")))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "s")
	require.NoError(t, err, "fallback key should open states sealed before rotation")
	assert.Equal(t, "Ana", loaded.Application.Name)

	loaded.Application.Name = "Ana Maria"
	require.NoError(t, newStore.Save(ctx, "s", loaded))

	_, err = oldStore.Load(ctx, "s")
	assert.Error(t, err, "a state resealed with the new key must not open with the old one")
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "plain", sampleState("plain")))

	store := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("old")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}
