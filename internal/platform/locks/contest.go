package locks

import (
	"context"
	"sync"
)

type heldKey struct {
	locks     *ContestLocks
	contestID int64
}

// ContestLocks is the in-memory per-contest mutex used when no database is
// configured. Nested calls for the same contest on the same context reuse the
// held lock.
type ContestLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewContestLocks() *ContestLocks {
	return &ContestLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *ContestLocks) WithContestLock(ctx context.Context, contestID int64, fn func(context.Context) error) error {
	key := heldKey{locks: l, contestID: contestID}
	if held, _ := ctx.Value(key).(bool); held {
		return fn(ctx)
	}
	m := l.mutexFor(contestID)
	m.Lock()
	defer m.Unlock()
	return fn(context.WithValue(ctx, key, true))
}

func (l *ContestLocks) mutexFor(contestID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[contestID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[contestID] = m
	}
	return m
}
