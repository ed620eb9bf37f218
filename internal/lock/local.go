package lock

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	token   string
	expires time.Time
}

// LocalLock is an in-process Locker for single-instance deployments
// where no Redis address is configured.
type LocalLock struct {
	mu    sync.Mutex
	locks map[string]localEntry
	now   func() time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{
		locks: make(map[string]localEntry),
		now:   time.Now,
	}
}

func (l *LocalLock) Lock(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.locks[key]; ok && now.Before(e.expires) {
		return false, nil
	}

	l.locks[key] = localEntry{token: token, expires: now.Add(ttl)}
	return true, nil
}

func (l *LocalLock) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.locks[key]; ok && e.token == token {
		delete(l.locks, key)
	}
	return nil
}

func (l *LocalLock) Close() error {
	return nil
}
