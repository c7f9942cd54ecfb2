/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrDataNotFound is returned when no entry is stored under a key.
var ErrDataNotFound = errors.New("data not found")

// Store keeps serialized issuer metadata keyed by issuer URL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Store safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory returns a Memory store. A zero ttl keeps entries until deleted.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: map[string]entry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		return nil, ErrDataNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)

	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	e := entry{value: append([]byte(nil), value...)}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return nil
}
