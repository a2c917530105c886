package store

import (
	"context"
	"sync"
)

// Memory is an in-process slot store.
//
// GetErr and SetErr, when non-nil, are returned by every Get or Set call,
// simulating unavailable or full storage.
type Memory struct {
	mu     sync.Mutex
	slots  map[string]string
	writes map[string]int

	GetErr error
	SetErr error
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]string), writes: make(map[string]int)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.slots[key]
	return v, ok, nil
}

// Set replaces the value stored under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.slots[key] = value
	m.writes[key]++
	return nil
}

// Writes returns how many successful Set calls key has seen.
func (m *Memory) Writes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}
