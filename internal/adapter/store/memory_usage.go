package store

import (
	"context"
	"sync"
	"time"

	"festify-gateway/internal/domain/entity"
)

// MemoryUsageStore is the default process-local usage store. Records are lost
// on restart.
type MemoryUsageStore struct {
	mu      sync.RWMutex
	records map[string]entity.ClientUsageRecord
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{records: make(map[string]entity.ClientUsageRecord)}
}

func (m *MemoryUsageStore) Get(_ context.Context, clientID string) (entity.ClientUsageRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[clientID]
	return rec, ok, nil
}

func (m *MemoryUsageStore) Set(_ context.Context, rec entity.ClientUsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ClientID] = rec
	return nil
}

func (m *MemoryUsageStore) Sweep(_ context.Context, idleSince time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, rec := range m.records {
		if rec.LastRequest.Before(idleSince) {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryUsageStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
