package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a Store and TxStore backed by a map.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.getLocked(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keysLocked(prefix), nil
}

func (m *Memory) getLocked(key string) ([]byte, bool) {
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

func (m *Memory) setLocked(key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
}

func (m *Memory) keysLocked(prefix string) []string {
	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn with exclusive access to the store.
// Writes go straight to the map; on error the pre-call snapshot is restored.
func (m *Memory) WithTx(_ context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		snapshot[k] = v
	}

	if err := fn(&memoryView{parent: m}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

// memoryView is handed to WithTx callbacks; the parent lock is already held.
type memoryView struct {
	parent *Memory
}

func (v *memoryView) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := v.parent.getLocked(key)
	return b, ok, nil
}

func (v *memoryView) Set(_ context.Context, key string, value []byte) error {
	v.parent.setLocked(key, value)
	return nil
}

func (v *memoryView) Delete(_ context.Context, key string) error {
	delete(v.parent.data, key)
	return nil
}

func (v *memoryView) Keys(_ context.Context, prefix string) ([]string, error) {
	return v.parent.keysLocked(prefix), nil
}
