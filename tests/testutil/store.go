package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nhle/teamspace/internal/store"
)

// ErrStorageFull is returned by a FailingBackend while it is failing.
var ErrStorageFull = errors.New("storage quota exceeded")

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// FailingBackend is a MemoryStore whose saves can be switched to fail.
type FailingBackend struct {
	*store.MemoryStore

	mu    sync.Mutex
	fail  bool
	saves int
}

// NewFailingBackend returns a backend that succeeds until Fail is called.
func NewFailingBackend() *FailingBackend {
	return &FailingBackend{MemoryStore: store.NewMemoryStore()}
}

// Fail makes every following Save return ErrStorageFull.
func (b *FailingBackend) Fail(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = v
}

// Saves returns the number of Save calls, failed ones included.
func (b *FailingBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *FailingBackend) Save(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	b.saves++
	fail := b.fail
	b.mu.Unlock()

	if fail {
		return ErrStorageFull
	}
	return b.MemoryStore.Save(ctx, key, data)
}

// Clock is a settable time source for WithClock options.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
