// Package session keeps per-user bot state: API token, build history,
// the last listing shown and saved aliases.
package session

import (
	"context"
	"sync"
)

// Store persists one encoded settings document per user. Get returns a nil
// document for users it has never seen.
type Store interface {
	Get(ctx context.Context, user string) ([]byte, error)
	Put(ctx context.Context, user string, doc []byte) error
}

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, user string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[user]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), doc...), nil
}

func (m *MemoryStore) Put(_ context.Context, user string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[user] = append([]byte(nil), doc...)
	return nil
}
