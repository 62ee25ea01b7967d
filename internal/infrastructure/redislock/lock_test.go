package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-library-api/pkg/apperror"
)

func newLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Minute, nil), mr
}

func TestLock_ExclusivePerUser(t *testing.T) {
	l, _ := newLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "u1")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, apperror.ErrBusy)

	other, err := l.Lock(ctx, "u2")
	require.NoError(t, err)
	other()

	unlock()
	again, err := l.Lock(ctx, "u1")
	require.NoError(t, err)
	again()
}

func TestLock_ExpiresAfterTTL(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	_, err := l.Lock(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(Key("u1")))

	mr.FastForward(2 * time.Minute)
	_, err = l.Lock(ctx, "u1")
	assert.NoError(t, err)
}

func TestUnlock_DoesNotReleaseForeignLock(t *testing.T) {
	l, mr := newLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "u1")
	require.NoError(t, err)

	// lock expired and was taken by someone else
	mr.FastForward(2 * time.Minute)
	require.NoError(t, mr.Set(Key("u1"), "someone-else"))

	unlock()
	got, err := mr.Get(Key("u1"))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
