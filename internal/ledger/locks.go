package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const defaultLockTimeout = 5 * time.Second

// LockTable hands out one exclusive lock per entity key, so operations on
// different accounts run fully in parallel while operations on the same
// account are serialized. When both an account and a stock lock are needed,
// the account lock is always taken first.
type LockTable struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	timeout time.Duration
}

func NewLockTable(timeout time.Duration) *LockTable {
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	return &LockTable{
		slots:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (t *LockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		t.slots[key] = s
	}
	return s
}

// Acquire blocks until the key's lock is free, the context is done, or the
// lock timeout elapses. On success it returns the release function; on
// contention timeout it returns ErrConcurrencyConflict.
func (t *LockTable) Acquire(ctx context.Context, key string) (func(), error) {
	s := t.slot(key)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-timer.C:
		return nil, fmt.Errorf("acquiring lock %q: %w", key, ErrConcurrencyConflict)
	case <-ctx.Done():
		return nil, fmt.Errorf("acquiring lock %q: %w", key, ctx.Err())
	}
}

func accountKey(userID uint) string { return fmt.Sprintf("account:%d", userID) }
func stockKey(stockID uint) string  { return fmt.Sprintf("stock:%d", stockID) }
