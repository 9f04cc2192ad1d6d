// Package client is the Go SDK for the rental API: an HTTP client with a
// shared response interceptor, a session store that mirrors the signed-in
// user to durable storage, and route guards for role-scoped views.
package client

import (
	"context"
	"sync"
)

// Keys under which the session is persisted.
const (
	KeyToken = "auth_token"
	KeyUser  = "current_user"
)

// Storage is a durable string key-value store. A nil Storage means no
// durable storage is available; the session then lives in memory only.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStorage is a Storage backed by a map, for tests and short-lived
// processes.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
