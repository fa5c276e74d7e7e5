package oracle

import (
	"context"
	"sync"

	"finvoice/pkg/platform/sentinel"
)

// InMemoryStore is the system of record for the oracle registry.
type InMemoryStore struct {
	mu            sync.RWMutex
	nextID        uint64
	oracles       map[uint64]Oracle
	byName        map[string]uint64
	verifications map[uint64]Verification
	reports       map[uint64][]Report
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		oracles:       make(map[uint64]Oracle),
		byName:        make(map[string]uint64),
		verifications: make(map[uint64]Verification),
		reports:       make(map[uint64][]Report),
	}
}

func (s *InMemoryStore) CreateOracle(_ context.Context, o *Oracle) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID
	s.nextID++
	s.oracles[o.ID] = *o
	s.byName[o.Name] = o.ID
	return o.ID, nil
}

func (s *InMemoryStore) FindOracle(_ context.Context, id uint64) (*Oracle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.oracles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &o, nil
}

func (s *InMemoryStore) UpdateOracle(_ context.Context, o *Oracle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.oracles[o.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.oracles[o.ID] = *o
	return nil
}

func (s *InMemoryStore) CountOracles(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.oracles), nil
}

func (s *InMemoryStore) NameTaken(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[name]
	return ok, nil
}

func (s *InMemoryStore) MoveName(_ context.Context, oldName, newName string, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byName, oldName)
	s.byName[newName] = id
	return nil
}

func (s *InMemoryStore) SaveVerification(_ context.Context, v Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifications[v.InvoiceID] = v
	return nil
}

func (s *InMemoryStore) FindVerification(_ context.Context, invoiceID uint64) (Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[invoiceID]
	if !ok {
		return Verification{}, sentinel.ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) AppendReport(_ context.Context, invoiceID uint64, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[invoiceID] = append(s.reports[invoiceID], r)
	return nil
}

func (s *InMemoryStore) ListReports(_ context.Context, invoiceID uint64) ([]Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Report, len(s.reports[invoiceID]))
	copy(out, s.reports[invoiceID])
	return out, nil
}
