package lock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"timetable-service/pkg/response"

	"github.com/google/uuid"
)

const retryInterval = 20 * time.Millisecond

// Acquire takes every key in sorted order under one fresh token, retrying each
// until wait elapses.
// On failure the keys already taken are released and response.ErrLocked is returned.
// The returned release func is safe to defer.
func Acquire(ctx context.Context, l Locker, keys []string, ttl, wait time.Duration) (func(), error) {
	const op = "lock.Acquire"

	token := uuid.NewString()
	sorted := dedupe(keys)
	held := make([]string, 0, len(sorted))

	release := func() {
		// release even when the request context is already cancelled
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = l.Unlock(rctx, held[i], token)
		}
	}

	deadline := time.Now().Add(wait)

	for _, key := range sorted {
		for {
			ok, err := l.Lock(ctx, key, token, ttl)
			if err != nil {
				release()
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if ok {
				held = append(held, key)
				break
			}

			if time.Now().After(deadline) {
				release()
				return nil, fmt.Errorf("%s: %s: %w", op, key, response.ErrLocked)
			}

			select {
			case <-ctx.Done():
				release()
				return nil, fmt.Errorf("%s: %w", op, ctx.Err())
			case <-time.After(retryInterval):
			}
		}
	}

	return release, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
