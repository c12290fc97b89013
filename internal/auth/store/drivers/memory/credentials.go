// Package memory is a process-local credential store for tests and single
// instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wagglex2/waggle/internal/auth/store"
)

type entry struct {
	hash      string
	expiresAt time.Time
}

type Credentials struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

var _ store.RotationRecords = (*Credentials)(nil)

// Option customises a Credentials store.
type Option func(*Credentials)

// WithClock replaces the clock used to evaluate expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Credentials) { c.now = now }
}

func New(opts ...Option) *Credentials {
	c := &Credentials{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Credentials) Put(_ context.Context, subjectID, hashedSecret string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[subjectID] = entry{hash: hashedSecret, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *Credentials) Get(_ context.Context, subjectID string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[subjectID]
	if !ok || !e.expiresAt.After(c.now()) {
		return "", store.ErrNotFound
	}
	return e.hash, nil
}

func (c *Credentials) Delete(_ context.Context, subjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, subjectID)
	return nil
}

// DeleteExpired drops lapsed entries and reports how many were removed.
func (c *Credentials) DeleteExpired(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var deleted int64
	for id, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of entries held, live or not.
func (c *Credentials) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
