package lease

import (
	"context"
	"sync"
	"time"
)

// Lease is a short-lived exclusive claim on a key. The compensating payment
// reconciler takes a per-order lease where the store cannot provide a
// transactional guard.
type Lease interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// LocalLease is the process-local fallback used when redis is not
// configured. It only fences callers inside one process.
type LocalLease struct {
	mu    sync.Mutex
	taken map[string]time.Time
}

// NewLocalLease constructs an in-process lease registry.
func NewLocalLease() *LocalLease {
	return &LocalLease{taken: make(map[string]time.Time)}
}

// Acquire claims key unless an unexpired claim exists.
func (l *LocalLease) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, ok := l.taken[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	l.taken[key] = time.Now().Add(ttl)
	return true, nil
}

// Release drops the claim on key.
func (l *LocalLease) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.taken, key)
	return nil
}
