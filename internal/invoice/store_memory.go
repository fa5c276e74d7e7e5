package invoice

import (
	"context"
	"sync"

	"finvoice/pkg/domain"
	"finvoice/pkg/platform/sentinel"
)

// InMemoryStore is the system of record for the invoice registry. It favors
// clarity over performance: one RWMutex, plain maps, copies on the way out.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     uint64
	invoices   map[uint64]Invoice
	amendments map[uint64]Amendment
	bySupplier map[domain.Principal][]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		invoices:   make(map[uint64]Invoice),
		amendments: make(map[uint64]Amendment),
		bySupplier: make(map[domain.Principal][]uint64),
	}
}

func (s *InMemoryStore) Create(_ context.Context, inv *Invoice) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	inv.ID = id
	s.invoices[id] = *inv
	s.bySupplier[inv.Supplier] = append(s.bySupplier[inv.Supplier], id)
	s.nextID++
	return id, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uint64) (*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &inv, nil
}

func (s *InMemoryStore) Update(_ context.Context, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.invoices[inv.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Supplier != inv.Supplier {
		s.moveSupplierIndex(inv.ID, current.Supplier, inv.Supplier)
	}
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.invoices, id)
	delete(s.amendments, id)
	s.bySupplier[inv.Supplier] = removeID(s.bySupplier[inv.Supplier], id)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

func (s *InMemoryStore) CountBySupplier(_ context.Context, supplier domain.Principal) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySupplier[supplier]), nil
}

func (s *InMemoryStore) SaveAmendment(_ context.Context, id uint64, a Amendment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.amendments[id] = a
	return nil
}

func (s *InMemoryStore) FindAmendment(_ context.Context, id uint64) (Amendment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.amendments[id]
	if !ok {
		return Amendment{}, sentinel.ErrNotFound
	}
	return a, nil
}

// moveSupplierIndex relocates an id between supplier buckets. Caller holds
// the write lock.
func (s *InMemoryStore) moveSupplierIndex(id uint64, from, to domain.Principal) {
	s.bySupplier[from] = removeID(s.bySupplier[from], id)
	s.bySupplier[to] = append(s.bySupplier[to], id)
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
