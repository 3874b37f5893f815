package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, time.Now().UTC())
		state.Stage = domain.StageAwaitingPhone
		state.Application = domain.Application{
			Name:           "Ana",
			GraduationYear: "2023",
			TargetLanguage: domain.LanguageSpanish,
		}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Stage, loaded.Stage)
		assert.Equal(t, state.Application, loaded.Application)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Isolation", func(t *testing.T) {
		a, b := sessionID+"-a", sessionID+"-b"
		defer func() {
			_ = store.Delete(ctx, a)
			_ = store.Delete(ctx, b)
		}()

		sa := domain.NewState(a, time.Now().UTC())
		sa.Application.Name = "first"
		sb := domain.NewState(b, time.Now().UTC())
		sb.Application.Name = "second"
		require.NoError(t, store.Save(ctx, a, sa))
		require.NoError(t, store.Save(ctx, b, sb))

		// Mutating the caller's copy must not leak into the store.
		sa.Application.Name = "mutated"

		la, err := store.Load(ctx, a)
		require.NoError(t, err)
		lb, err := store.Load(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, "first", la.Application.Name)
		assert.Equal(t, "second", lb.Application.Name)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, time.Now().UTC()))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, time.Now().UTC()))
		_ = store.Save(ctx, id2, domain.NewState(id2, time.Now().UTC()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
