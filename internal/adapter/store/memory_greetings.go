package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"festify-gateway/internal/domain/entity"
)

type MemoryGreetingStore struct {
	mu      sync.RWMutex
	records map[string]entity.GreetingRecord
}

func NewMemoryGreetingStore() *MemoryGreetingStore {
	return &MemoryGreetingStore{records: make(map[string]entity.GreetingRecord)}
}

func (m *MemoryGreetingStore) Save(_ context.Context, rec *entity.GreetingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = *rec
	return nil
}

// ListByOwner returns the owner's greetings, newest first. Owners are wallet
// addresses and compare case-insensitively.
func (m *MemoryGreetingStore) ListByOwner(_ context.Context, owner string) ([]entity.GreetingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []entity.GreetingRecord{}
	for _, rec := range m.records {
		if strings.EqualFold(rec.Owner, owner) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryGreetingStore) UpdateStatus(_ context.Context, id string, status entity.GreetingStatus, txHash string) (*entity.GreetingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, entity.ErrResourceNotFound
	}
	rec.Status = status
	if txHash != "" {
		rec.TxHash = txHash
	}
	rec.UpdatedAt = time.Now().UTC()
	m.records[id] = rec
	return &rec, nil
}

func (m *MemoryGreetingStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return entity.ErrResourceNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryGreetingStore) Similar(context.Context, string, int) ([]entity.SimilarGreeting, error) {
	return nil, entity.ErrUnsupported
}
