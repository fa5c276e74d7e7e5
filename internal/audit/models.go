package audit

import (
	"context"
	"time"

	"finvoice/pkg/domain"
)

// Action names a state transition worth keeping a trail of.
type Action string

const (
	// Invoice registry
	ActionInvoiceMinted      Action = "invoice_minted"
	ActionInvoiceTransferred Action = "invoice_transferred"
	ActionInvoicePaid        Action = "invoice_paid"
	ActionInvoiceUpdated     Action = "invoice_updated"
	ActionInvoiceBurned      Action = "invoice_burned"

	// Financing pool
	ActionListingCreated Action = "listing_created"
	ActionListingUpdated Action = "listing_updated"
	ActionBidPlaced      Action = "bid_placed"
	ActionBidAccepted    Action = "bid_accepted"
	ActionPoolDeposit    Action = "pool_deposit"
	ActionPoolWithdrawal Action = "pool_withdrawal"

	// Payment oracle
	ActionOracleRegistered Action = "oracle_registered"
	ActionOracleUpdated    Action = "oracle_updated"
	ActionPaymentReported  Action = "payment_reported"

	// Configuration
	ActionAuthoritySet Action = "authority_set"
	ActionFeeChanged   Action = "fee_changed"
)

// Event is emitted from registry services on every successful transition.
// Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string           `json:"id"`
	Action    Action           `json:"action"`
	Actor     domain.Principal `json:"actor"`
	EntityID  uint64           `json:"entity_id"`
	Amount    uint64           `json:"amount,omitempty"`
	Height    uint64           `json:"height"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}

// Store persists audit events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor domain.Principal) ([]Event, error)
}

// Sink receives events after they are persisted. Sinks are best-effort;
// a failing sink never fails the business operation.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}
