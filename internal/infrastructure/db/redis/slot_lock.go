package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hearthline/homeservices-api/internal/api/metrics"
	"github.com/hearthline/homeservices-api/internal/core/domain"
)

const (
	// BucketSize is the lock granularity. Any two windows that overlap share
	// at least one bucket.
	BucketSize = 30 * time.Minute

	defaultLockTTL  = 30 * time.Second
	defaultLockWait = 5 * time.Second
	pollInterval    = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker serialises booking requests whose windows touch the same time
// buckets.
// Key format: booking:lock:<bucket_unix_start>
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewSlotLocker creates a SlotLocker. ttl bounds how long a crashed holder
// can block a bucket; wait bounds how long Acquire polls.
func NewSlotLocker(client *redis.Client, ttl, wait time.Duration, log zerolog.Logger) *SlotLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &SlotLocker{client: client, ttl: ttl, wait: wait, log: log}
}

// Acquire takes every bucket lock of w, in ascending order, polling until all
// are held or the wait elapses.
func (l *SlotLocker) Acquire(ctx context.Context, w domain.Window) (func(context.Context), error) {
	keys := bucketKeys(w)
	token := uuid.NewString()
	started := time.Now()
	deadline := started.Add(l.wait)

	for {
		held, err := l.tryAcquire(ctx, keys, token)
		if err != nil {
			return nil, err
		}
		if held {
			metrics.SlotLockWaitDuration.Observe(time.Since(started).Seconds())
			return func(ctx context.Context) { l.release(ctx, keys, token) }, nil
		}
		if time.Now().After(deadline) {
			metrics.SlotLockWaitDuration.Observe(time.Since(started).Seconds())
			return nil, domain.ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// tryAcquire attempts all keys once. On partial success the acquired keys are
// released before reporting false.
func (l *SlotLocker) tryAcquire(ctx context.Context, keys []string, token string) (bool, error) {
	for i, key := range keys {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.release(context.WithoutCancel(ctx), keys[:i], token)
			return false, fmt.Errorf("slot lock %s: %w", key, err)
		}
		if !ok {
			l.release(context.WithoutCancel(ctx), keys[:i], token)
			return false, nil
		}
	}
	return true, nil
}

func (l *SlotLocker) release(ctx context.Context, keys []string, token string) {
	for _, key := range keys {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("failed to release slot lock")
		}
	}
}

// bucketKeys lists the lock keys of every bucket intersecting w.
func bucketKeys(w domain.Window) []string {
	var keys []string
	for b := w.Start.UTC().Truncate(BucketSize); b.Before(w.End); b = b.Add(BucketSize) {
		keys = append(keys, fmt.Sprintf("booking:lock:%d", b.Unix()))
	}
	return keys
}
