// Package kv provides the small persistent key-value stores the playlist is
// saved into. A store behaves like a browser cookie jar: values expire after
// their TTL and a missing key reads as an empty string.
package kv

import (
	"context"
	"sync"
	"time"
)

// Store is a string key-value store with per-key expiry.
type Store interface {
	// Get returns the value, or an empty string if the key is missing or has
	// expired.
	Get(ctx context.Context, key string) (string, error)
	// Set stores the value. A zero ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

type entry struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

func makeEntry(value string, ttl time.Duration, now time.Time) entry {
	e := entry{Value: value}
	if ttl > 0 {
		e.Expires = now.Add(ttl)
	}
	return e
}

// Memory is an in-memory store. The zero value is ready to use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(m.clock()) {
		return "", nil
	}
	return e.Value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]entry)
	}
	m.entries[key] = makeEntry(value, ttl, m.clock())
	return nil
}

func (m *Memory) Close() error { return nil }
