// Package redislock serialises profile mutations per user across instances.
package redislock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func New(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{rdb: rdb, ttl: ttl, logger: logger}
}

func Key(userID string) string {
	return "lock:profile:" + userID
}

// Lock takes the per-user lock without waiting. The lock expires after ttl
// so a crashed holder cannot block the user forever.
func (l *Locker) Lock(ctx context.Context, userID string) (func(), error) {
	key := Key(userID)
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "acquire profile lock", err)
	}
	if !ok {
		return nil, apperror.New(apperror.KindBusy, "another profile update is in progress")
	}
	return func() {
		// release even when the request context is already cancelled
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(c, l.rdb, []string{key}, token).Err(); err != nil && l.logger != nil {
			l.logger.WithError(err).WithField("key", key).Warn("release profile lock failed")
		}
	}, nil
}

var _ repository.UserLocker = (*Locker)(nil)
