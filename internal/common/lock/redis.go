package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// releaseScript deletes the key only if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig tunes the distributed lock
type RedisConfig struct {
	TTL        time.Duration // how long a crashed holder keeps the key
	Wait       time.Duration // how long Lock keeps retrying
	RetryEvery time.Duration
}

type redisLocker struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedisLocker returns a Locker backed by SET NX PX, shared by every API
// instance pointing at the same Redis.
func NewRedisLocker(client *redis.Client, cfg RedisConfig) Locker {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 3 * time.Second
	}
	if cfg.RetryEvery <= 0 {
		cfg.RetryEvery = 25 * time.Millisecond
	}
	return &redisLocker{client: client, cfg: cfg}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.cfg.Wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// release with a fresh context so a cancelled request still frees the key
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("Failed to release redis lock")
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-time.After(l.cfg.RetryEvery):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
