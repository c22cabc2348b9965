package lock

import (
	"context"
	"sync"
	"time"

	"youtube-auto-post/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only if it still holds our token, so an
// expired lock taken over by another node is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// extendScript resets the lease only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// RedisLock is a SET NX based lock shared by every node using the same Redis.
// A held lock renews its lease every third of the TTL until released, so a
// long upload keeps its key while the holder is alive.
type RedisLock struct {
	rdb       redis.UniversalClient
	prefix    string
	ttl       time.Duration
	retryWait time.Duration
}

type RedisLockOption func(*RedisLock)

func WithTTL(ttl time.Duration) RedisLockOption {
	return func(l *RedisLock) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithRetryWait(d time.Duration) RedisLockOption {
	return func(l *RedisLock) { l.retryWait = d }
}

func NewRedisLock(rdb redis.UniversalClient, opts ...RedisLockOption) *RedisLock {
	l := &RedisLock{rdb: rdb, prefix: "dlock:", ttl: time.Hour, retryWait: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLock) TryLock(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	k := l.prefix + key
	ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	stop := make(chan struct{})
	go l.keepAlive(k, token, stop)
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			// the caller's context may already be cancelled
			if err := unlockScript.Run(context.Background(), l.rdb, []string{k}, token).Err(); err != nil {
				logger.GetLogger().WithField("key", k).WithField("error", err).Warn("release redis lock failed")
			}
		})
	}, true, nil
}

func (l *RedisLock) keepAlive(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n, err := extendScript.Run(context.Background(), l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int()
			if err != nil {
				logger.GetLogger().WithField("key", key).WithField("error", err).Warn("renew redis lock failed")
				continue
			}
			if n == 0 {
				logger.GetLogger().WithField("key", key).Error("redis lock lost before release")
				return
			}
		}
	}
}

func (l *RedisLock) Lock(ctx context.Context, key string) (func(), error) {
	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()
	for {
		release, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
