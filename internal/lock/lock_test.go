package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"timetable-service/pkg/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	l, err := NewRedisLock(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	return l, mr
}

func TestRedisLock(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLock(t)

	ok, err := l.Lock(ctx, "day:1:10:monday", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("lock:day:1:10:monday"))

	ok, err = l.Lock(ctx, "day:1:10:monday", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Unlock(ctx, "day:1:10:monday", "b"))
	assert.True(t, mr.Exists("lock:day:1:10:monday"), "only the owner releases")

	require.NoError(t, l.Unlock(ctx, "day:1:10:monday", "a"))
	assert.False(t, mr.Exists("lock:day:1:10:monday"))

	ok, err = l.Lock(ctx, "day:1:10:monday", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockExpires(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLock(t)

	ok, err := l.Lock(ctx, "budget:1:20", "first", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	other, err := NewRedisLock(mr.Addr())
	require.NoError(t, err)
	defer other.Close()

	ok, err = other.Lock(ctx, "budget:1:20", "second", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// the first holder lost the key and must not release the new owner's lock
	require.NoError(t, l.Unlock(ctx, "budget:1:20", "first"))
	assert.True(t, mr.Exists("lock:budget:1:20"))
}

func TestRedisLockStaleReleaseOnSameInstance(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLock(t)

	first, err := Acquire(ctx, l, []string{"day:1:10:monday"}, time.Second, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	second, err := Acquire(ctx, l, []string{"day:1:10:monday"}, time.Minute, time.Second)
	require.NoError(t, err)

	first()
	assert.True(t, mr.Exists("lock:day:1:10:monday"))

	ok, err := l.Lock(ctx, "day:1:10:monday", "third", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	second()
	assert.False(t, mr.Exists("lock:day:1:10:monday"))
}

func TestRedisLockUnlockUnknownKey(t *testing.T) {
	l, _ := newRedisLock(t)
	assert.NoError(t, l.Unlock(context.Background(), "never-locked", "a"))
}

func TestNewRedisLockUnreachable(t *testing.T) {
	_, err := NewRedisLock("127.0.0.1:1")
	assert.Error(t, err)
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	l := NewLocalLock()
	l.now = func() time.Time { return now }

	ok, _ := l.Lock(ctx, "a", "first", time.Second)
	assert.True(t, ok)

	ok, _ = l.Lock(ctx, "a", "second", time.Second)
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	ok, _ = l.Lock(ctx, "a", "second", time.Second)
	assert.True(t, ok, "expired locks can be taken over")

	require.NoError(t, l.Unlock(ctx, "a", "first"))
	ok, _ = l.Lock(ctx, "a", "third", time.Second)
	assert.False(t, ok, "a stale holder does not release the new owner")

	require.NoError(t, l.Unlock(ctx, "a", "second"))
	ok, _ = l.Lock(ctx, "a", "third", time.Second)
	assert.True(t, ok)
}

func TestLocalLockStaleReleaseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	l := NewLocalLock()
	l.now = func() time.Time { return now }

	first, err := Acquire(ctx, l, []string{"budget:1:20"}, time.Second, time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	second, err := Acquire(ctx, l, []string{"budget:1:20"}, time.Minute, time.Second)
	require.NoError(t, err)

	first()
	ok, _ := l.Lock(ctx, "budget:1:20", "third", time.Minute)
	assert.False(t, ok)

	second()
	ok, _ = l.Lock(ctx, "budget:1:20", "third", time.Minute)
	assert.True(t, ok)
}

type recordingLocker struct {
	*LocalLock

	mu       sync.Mutex
	locked   []string
	unlocked []string
}

func (r *recordingLocker) Lock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := r.LocalLock.Lock(ctx, key, token, ttl)
	if ok {
		r.mu.Lock()
		r.locked = append(r.locked, key)
		r.mu.Unlock()
	}
	return ok, err
}

func (r *recordingLocker) Unlock(ctx context.Context, key, token string) error {
	r.mu.Lock()
	r.unlocked = append(r.unlocked, key)
	r.mu.Unlock()
	return r.LocalLock.Unlock(ctx, key, token)
}

func TestAcquireSortsAndReleasesInReverse(t *testing.T) {
	l := &recordingLocker{LocalLock: NewLocalLock()}

	release, err := Acquire(context.Background(), l, []string{"day:1", "budget:1", "day:1"}, time.Minute, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"budget:1", "day:1"}, l.locked)

	release()
	assert.Equal(t, []string{"day:1", "budget:1"}, l.unlocked)
}

func TestAcquireTimesOut(t *testing.T) {
	ctx := context.Background()
	l := &recordingLocker{LocalLock: NewLocalLock()}

	ok, err := l.LocalLock.Lock(ctx, "day:1", "holder", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = Acquire(ctx, l, []string{"budget:1", "day:1"}, time.Minute, 50*time.Millisecond)
	assert.ErrorIs(t, err, response.ErrLocked)

	// budget:1 was taken first and must be given back
	assert.Equal(t, []string{"budget:1"}, l.unlocked)
	ok, _ = l.LocalLock.Lock(ctx, "budget:1", "holder", time.Minute)
	assert.True(t, ok)
}

func TestAcquireWaitsForRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()

	release, err := Acquire(ctx, l, []string{"k"}, time.Minute, time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	second, err := Acquire(ctx, l, []string{"k"}, time.Minute, 2*time.Second)
	require.NoError(t, err)
	second()
}

func TestAcquireStopsOnCancelledContext(t *testing.T) {
	l := NewLocalLock()
	_, err := Acquire(context.Background(), l, []string{"k"}, time.Minute, time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Acquire(ctx, l, []string{"k"}, time.Minute, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
