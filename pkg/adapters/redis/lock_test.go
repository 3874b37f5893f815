package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/rapidhire/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:resource1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := "shared-resource"

	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()

	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlockOld, err := locker.Lock(ctx, "k", time.Second)
	require.NoError(t, err)

	// The first holder's lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	unlockNew, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlockOld(ctx))
	assert.True(t, mr.Exists("test:lock:k"), "stale holder must not release the new lock")

	require.NoError(t, unlockNew(ctx))
	assert.False(t, mr.Exists("test:lock:k"))
}
