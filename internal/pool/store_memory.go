package pool

import (
	"context"
	"sync"

	"finvoice/pkg/domain"
	"finvoice/pkg/platform/sentinel"
)

type bidKey struct {
	listingID uint64
	bidder    domain.Principal
}

// InMemoryStore is the system of record for the pool. One RWMutex, plain
// maps, copies on the way out.
type InMemoryStore struct {
	mu        sync.RWMutex
	nextID    uint64
	listings  map[uint64]Listing
	byInvoice map[uint64]uint64
	bids      map[bidKey]Bid
	revisions map[uint64]Revision
	balances  map[domain.Principal]uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		listings:  make(map[uint64]Listing),
		byInvoice: make(map[uint64]uint64),
		bids:      make(map[bidKey]Bid),
		revisions: make(map[uint64]Revision),
		balances:  make(map[domain.Principal]uint64),
	}
}

func (s *InMemoryStore) CreateListing(_ context.Context, l *Listing) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	l.ID = id
	s.listings[id] = *l
	s.byInvoice[l.InvoiceID] = id
	s.nextID++
	return id, nil
}

func (s *InMemoryStore) FindListing(_ context.Context, id uint64) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &l, nil
}

func (s *InMemoryStore) FindListingByInvoice(_ context.Context, invoiceID uint64) (*Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byInvoice[invoiceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	l := s.listings[id]
	return &l, nil
}

func (s *InMemoryStore) UpdateListing(_ context.Context, l *Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[l.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.listings[l.ID] = *l
	return nil
}

func (s *InMemoryStore) CountListings(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID, nil
}

func (s *InMemoryStore) SaveBid(_ context.Context, b Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[bidKey{b.ListingID, b.Bidder}] = b
	return nil
}

func (s *InMemoryStore) FindBid(_ context.Context, listingID uint64, bidder domain.Principal) (Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bids[bidKey{listingID, bidder}]
	if !ok {
		return Bid{}, sentinel.ErrNotFound
	}
	return b, nil
}

func (s *InMemoryStore) DeleteBid(_ context.Context, listingID uint64, bidder domain.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bids, bidKey{listingID, bidder})
	return nil
}

func (s *InMemoryStore) SaveRevision(_ context.Context, listingID uint64, r Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listingID]; !ok {
		return sentinel.ErrNotFound
	}
	s.revisions[listingID] = r
	return nil
}

func (s *InMemoryStore) FindRevision(_ context.Context, listingID uint64) (Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.revisions[listingID]
	if !ok {
		return Revision{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (s *InMemoryStore) Credit(_ context.Context, p domain.Principal, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[p] += amount
	return nil
}

func (s *InMemoryStore) Debit(_ context.Context, p domain.Principal, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[p] < amount {
		return sentinel.ErrInvalidState
	}
	s.balances[p] -= amount
	return nil
}

func (s *InMemoryStore) Balance(_ context.Context, p domain.Principal) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[p], nil
}
