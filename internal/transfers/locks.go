package transfers

import (
	"context"
	"sync"
	"time"

	"fieldops/pkg/apperrors"
)

// LockTable hands out one exclusive lock per asset id. Batch acquisition
// always walks ids in ascending order, so two overlapping batches can never
// deadlock; whichever wins the lowest shared id finishes first.
type LockTable struct {
	mu      sync.Mutex
	locks   map[int]chan struct{}
	timeout time.Duration
}

func NewLockTable(timeout time.Duration) *LockTable {
	return &LockTable{
		locks:   make(map[int]chan struct{}),
		timeout: timeout,
	}
}

func (t *LockTable) lock(id int) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch, ok := t.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		t.locks[id] = ch
	}
	return ch
}

// Acquire takes the locks for every id, walking them deduplicated and in
// ascending order regardless of how the caller listed them, and returns a
// release function. If any lock is not acquired before the table's timeout
// elapses, everything already taken is released and a ContentionError is
// returned; on context cancellation the context error is returned instead.
// Either way no lock stays held on failure.
func (t *LockTable) Acquire(ctx context.Context, ids []int) (func(), error) {
	ids = uniqueSorted(ids)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	acquired := make([]chan struct{}, 0, len(ids))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			<-acquired[i]
		}
	}

	for _, id := range ids {
		ch := t.lock(id)
		select {
		case ch <- struct{}{}:
			acquired = append(acquired, ch)
		case <-timer.C:
			release()
			return nil, apperrors.NewContention("asset %d is locked by another operation", id)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}
