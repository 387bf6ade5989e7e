// Package store defines the durable key-value contract used by the state
// engines and a write-behind saver that persists snapshots off the caller's
// goroutine.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Record keys.
const (
	KeyEntitlement = "entitlement"
	KeyQuota       = "quota"
	KeyPurchases   = "purchases"
)

// KV is durable key-value storage. Load reports found=false for absent keys.
type KV interface {
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// Saver accepts snapshots to persist. Implementations must not block on I/O
// and must never return storage errors to the caller.
type Saver interface {
	Enqueue(key string, data []byte)
}

// LoadJSON loads key into v. It returns found=false when the key is absent.
func LoadJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, found, err := kv.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !found || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// Memory is an in-process KV, used in tests and when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	data    map[string][]byte
	saveErr error
	saves   int
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns a copy of the stored bytes.
func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Save stores a copy of data.
func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data[key] = stored
	m.saves++
	return nil
}

// Put seeds raw bytes for key, bypassing any configured failure.
func (m *Memory) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
}

// FailSaves makes every subsequent Save return err (nil clears it).
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Sync is a Saver that writes through immediately on the caller's goroutine,
// logging nothing and swallowing errors. Useful in short-lived CLI commands
// and tests.
type Sync struct {
	KV KV
}

// Enqueue saves data right away.
func (s Sync) Enqueue(key string, data []byte) {
	_ = s.KV.Save(context.Background(), key, data)
}
