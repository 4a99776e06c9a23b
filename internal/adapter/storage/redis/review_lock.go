package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReviewLock implements ports.ReviewLocker with SET NX PX.
// Locks are advisory; the conditional status update stays authoritative.
type ReviewLock struct {
	client   *goredis.Client
	prefix   string
	newToken func() string
}

func NewReviewLock(client *goredis.Client) *ReviewLock {
	return &ReviewLock{
		client:   client,
		prefix:   "review-lock:",
		newToken: uuid.NewString,
	}
}

// Acquire reports false if another reviewer holds the application. Every
// successful call gets its own token.
func (l *ReviewLock) Acquire(ctx context.Context, applicationID string, ttl time.Duration) (string, bool, error) {
	token := l.newToken()
	err := l.client.SetArgs(ctx, l.prefix+applicationID, token, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis review lock: %w", err)
	}
	return token, true, nil
}

// Release drops the lock only if it is still held under token.
func (l *ReviewLock) Release(ctx context.Context, applicationID, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + applicationID}, token).Err(); err != nil {
		return fmt.Errorf("redis review unlock: %w", err)
	}
	return nil
}
