package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Minute

// releaseScript deletes the key only while it still holds our owner id, so an
// expired lock taken over by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock keeps two instances from generating payroll for the same period at
// the same time. Key format: payroll:lock:<year>-<month>
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
	owner  string
}

// NewRunLock wraps client. A non-positive ttl falls back to defaultLockTTL.
func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RunLock{client: client, ttl: ttl, owner: uuid.NewString()}
}

// Acquire reports whether the lock for the period was free and is now held.
func (l *RunLock) Acquire(ctx context.Context, month, year int) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(month, year), l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (l *RunLock) Release(ctx context.Context, month, year int) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(month, year)}, l.owner).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

func (l *RunLock) key(month, year int) string {
	return fmt.Sprintf("payroll:lock:%04d-%02d", year, month)
}
