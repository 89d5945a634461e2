package cache

import (
	"context"
	"sync"

	syncapp "github.com/shop/backend/internal/application/sync"
)

// InMemoryRunLock serializes sync runs within a single process. Suitable for
// single-instance deployments and tests; distributed deployments need
// RedisRunLock.
type InMemoryRunLock struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewInMemoryRunLock creates an in-memory run lock
func NewInMemoryRunLock() *InMemoryRunLock {
	return &InMemoryRunLock{held: make(map[string]bool)}
}

// Acquire takes the named lock. It returns a release function on success and
// ErrSyncAlreadyRunning when the lock is already held.
func (l *InMemoryRunLock) Acquire(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[name] {
		return nil, syncapp.ErrSyncAlreadyRunning
	}
	l.held[name] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.held, name)
		})
	}
	return release, nil
}

// Ensure InMemoryRunLock implements the application lock port
var _ syncapp.RunLock = (*InMemoryRunLock)(nil)
