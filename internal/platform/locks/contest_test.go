package locks

import (
	"context"
	"sync"
	"testing"
)

func TestWithContestLockIsReentrant(t *testing.T) {
	l := NewContestLocks()
	calls := 0
	err := l.WithContestLock(context.Background(), 7, func(ctx context.Context) error {
		return l.WithContestLock(ctx, 7, func(context.Context) error {
			calls++
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested lock: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected inner call, got %d", calls)
	}
}

func TestWithContestLockSerializesSameContest(t *testing.T) {
	l := NewContestLocks()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithContestLock(context.Background(), 1, func(context.Context) error {
				current := counter
				counter = current + 1
				return nil
			})
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("expected 50 serialized increments, got %d", counter)
	}
}
