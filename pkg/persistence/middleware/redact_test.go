package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/rapidhire/pkg/adapters/memory"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_Masking(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "s", sampleState("s")))

	store := middleware.NewRedactionMiddleware(middleware.PIIFields...)(underlying)
	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)

	assert.Equal(t, middleware.Mask, loaded.Application.Name)
	assert.Equal(t, middleware.Mask, loaded.Application.Phone)
	assert.Equal(t, "2023", loaded.Application.GraduationYear)
	assert.Equal(t, domain.LanguageSpanish, loaded.Application.TargetLanguage)

	raw, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "+201012345678", raw.Application.Phone, "the backend copy stays intact")
}

func TestRedactionMiddleware_EmptyFieldsStayEmpty(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	state := domain.NewState("s", sampleState("s").StartedAt)
	require.NoError(t, underlying.Save(ctx, "s", state))

	store := middleware.NewRedactionMiddleware(middleware.FieldPhone, middleware.FieldTargetLanguage)(underlying)
	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, loaded.Application.Phone)
	assert.Empty(t, loaded.Application.TargetLanguage)
}

func TestChain_OverEncryptedStore(t *testing.T) {
	ctx := context.Background()
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	underlying := memory.NewStore()
	store := middleware.Chain(underlying, middleware.NewRedactionMiddleware(middleware.FieldPhone), enc)
	require.NoError(t, store.Save(ctx, "s", sampleState("s")))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Ana", loaded.Application.Name)
	assert.Equal(t, middleware.Mask, loaded.Application.Phone)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, ids)

	require.NoError(t, store.Delete(ctx, "s"))
	_, err = store.Load(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
