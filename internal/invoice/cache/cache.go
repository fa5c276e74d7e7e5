// Package cache wraps an invoice.Store with a Redis read-through layer.
// Writes go straight to the underlying store and invalidate; only FindByID
// is served from cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"finvoice/internal/invoice"
	"finvoice/pkg/domain"
)

const defaultTTL = 5 * time.Minute

type Store struct {
	next   invoice.Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the cached store.
type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func New(next invoice.Store, client *redis.Client, opts ...Option) *Store {
	s := &Store{
		next:   next,
		client: client,
		ttl:    defaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(id uint64) string {
	return fmt.Sprintf("invoice:%d", id)
}

func (s *Store) Create(ctx context.Context, inv *invoice.Invoice) (uint64, error) {
	return s.next.Create(ctx, inv)
}

func (s *Store) FindByID(ctx context.Context, id uint64) (*invoice.Invoice, error) {
	if raw, err := s.client.Get(ctx, key(id)).Bytes(); err == nil {
		var inv invoice.Invoice
		if err := json.Unmarshal(raw, &inv); err == nil {
			return &inv, nil
		}
		// Corrupt entry, fall through to the store and rewrite.
	}

	inv, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, inv)
	return inv, nil
}

func (s *Store) Update(ctx context.Context, inv *invoice.Invoice) error {
	if err := s.next.Update(ctx, inv); err != nil {
		return err
	}
	s.invalidate(ctx, inv.ID)
	return nil
}

func (s *Store) Delete(ctx context.Context, id uint64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Store) Count(ctx context.Context) (uint64, error) {
	return s.next.Count(ctx)
}

func (s *Store) CountBySupplier(ctx context.Context, supplier domain.Principal) (int, error) {
	return s.next.CountBySupplier(ctx, supplier)
}

func (s *Store) SaveAmendment(ctx context.Context, id uint64, a invoice.Amendment) error {
	return s.next.SaveAmendment(ctx, id, a)
}

func (s *Store) FindAmendment(ctx context.Context, id uint64) (invoice.Amendment, error) {
	return s.next.FindAmendment(ctx, id)
}

func (s *Store) set(ctx context.Context, inv *invoice.Invoice) {
	raw, err := json.Marshal(inv)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key(inv.ID), raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "invoice cache set failed", "invoice_id", inv.ID, "error", err)
	}
}

func (s *Store) invalidate(ctx context.Context, id uint64) {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		s.logger.WarnContext(ctx, "invoice cache invalidation failed", "invoice_id", id, "error", err)
	}
}
