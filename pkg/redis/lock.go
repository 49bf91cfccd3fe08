package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLockHeld is returned when another run owns the lock
var ErrLockHeld = errors.New("run lock is held by another process")

// releaseScript deletes the key only when it still belongs to the caller
const releaseScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`

// RunLock guards an output directory against two concurrent screening runs.
// ⭐ SSOT: 실행 잠금은 여기서만
type RunLock struct {
	client *Client
	key    string
	ttl    time.Duration
}

// NewRunLock creates a lock named prefix:lock:name with the given expiry.
// The expiry bounds how long a crashed run can block the next one.
func NewRunLock(client *Client, prefix, name string, ttl time.Duration) *RunLock {
	return &RunLock{
		client: client,
		key:    fmt.Sprintf("%s:lock:%s", prefix, name),
		ttl:    ttl,
	}
}

// Key returns the Redis key of the lock
func (l *RunLock) Key() string {
	return l.key
}

// Acquire takes the lock for owner. With Redis disabled it always succeeds.
func (l *RunLock) Acquire(ctx context.Context, owner string) error {
	if !l.client.Enabled() {
		return nil
	}

	ok, err := l.client.Redis().SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release gives the lock back if owner still holds it
func (l *RunLock) Release(ctx context.Context, owner string) error {
	if !l.client.Enabled() {
		return nil
	}

	if err := l.client.Redis().Eval(ctx, releaseScript, []string{l.key}, owner).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
