package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	platformmetrics "finvoice/internal/platform/metrics"
	"finvoice/internal/platform/middleware"
	"finvoice/internal/pool"
	"finvoice/internal/transport/http/shared"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
)

// Service defines the interface for financing pool operations.
type Service interface {
	ListInvoice(ctx context.Context, caller domain.Principal, params pool.ListingParams) (uint64, error)
	PlaceBid(ctx context.Context, caller domain.Principal, listingID, amount uint64) error
	AcceptBid(ctx context.Context, caller domain.Principal, listingID uint64, bidder domain.Principal) error
	UpdateListing(ctx context.Context, caller domain.Principal, listingID, price, minPrice uint64) error
	Deposit(ctx context.Context, caller domain.Principal, amount uint64) error
	Withdraw(ctx context.Context, caller domain.Principal, amount uint64) error
	GetListing(ctx context.Context, id uint64) (*pool.Listing, error)
	GetBid(ctx context.Context, listingID uint64, bidder domain.Principal) (pool.Bid, error)
	CountListings(ctx context.Context) (uint64, error)
	ListingExists(ctx context.Context, invoiceID uint64) (bool, error)
	Balance(ctx context.Context, p domain.Principal) (uint64, error)
	SetAdmin(ctx context.Context, admin domain.Principal) error
	SetPoolFee(ctx context.Context, caller domain.Principal, fee uint64) error
}

// Handler handles financing pool endpoints.
type Handler struct {
	logger       *slog.Logger
	pool         Service
	metrics      *platformmetrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new pool Handler.
func New(
	pool Service,
	logger *slog.Logger,
	metrics *platformmetrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		pool:         pool,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the pool routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(poolRouter chi.Router) {
		poolRouter.Use(middleware.Recovery(h.logger))
		poolRouter.Use(middleware.RequestID)
		poolRouter.Use(middleware.Logger(h.logger))
		poolRouter.Use(middleware.Timeout(30 * time.Second))
		poolRouter.Use(middleware.ContentTypeJSON)
		poolRouter.Use(middleware.LatencyMiddleware(h.metrics))
		poolRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		poolRouter.Post("/listings", h.handleList)
		poolRouter.Get("/listings/count", h.handleCount)
		poolRouter.Get("/listings/invoice/{id}", h.handleListingExists)
		poolRouter.Get("/listings/{id}", h.handleGetListing)
		poolRouter.Put("/listings/{id}", h.handleUpdateListing)
		poolRouter.Post("/listings/{id}/bids", h.handlePlaceBid)
		poolRouter.Post("/listings/{id}/accept", h.handleAcceptBid)
		poolRouter.Get("/listings/{id}/bids/{bidder}", h.handleGetBid)
		poolRouter.Post("/pool/deposit", h.handleDeposit)
		poolRouter.Post("/pool/withdraw", h.handleWithdraw)
		poolRouter.Get("/pool/balance", h.handleBalance)
		poolRouter.Post("/pool/admin", h.handleSetAdmin)
		poolRouter.Post("/pool/fee", h.handleSetFee)
	})
}

type listRequest struct {
	InvoiceID    uint64 `json:"invoice_id"`
	Price        uint64 `json:"price"`
	MinPrice     uint64 `json:"min_price"`
	MaxBid       uint64 `json:"max_bid"`
	Duration     uint64 `json:"duration"`
	InterestRate uint64 `json:"interest_rate"`
	Type         string `json:"type"`
	FeeRate      uint64 `json:"fee_rate"`
	Currency     string `json:"currency"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params := pool.ListingParams{
		InvoiceID:    req.InvoiceID,
		Price:        req.Price,
		MinPrice:     req.MinPrice,
		MaxBid:       req.MaxBid,
		Duration:     req.Duration,
		InterestRate: req.InterestRate,
		Type:         pool.ListingType(req.Type),
		FeeRate:      req.FeeRate,
		Currency:     pool.Currency(req.Currency),
	}
	id, err := h.pool.ListInvoice(ctx, caller, params)
	if err != nil {
		h.logger.WarnContext(ctx, "listing rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	listing, err := h.pool.GetListing(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.pool.CountListings(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) handleListingExists(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	exists, err := h.pool.ListingExists(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

type updateListingRequest struct {
	Price    uint64 `json:"price"`
	MinPrice uint64 `json:"min_price"`
}

func (h *Handler) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.UpdateListing(r.Context(), caller, id, req.Price, req.MinPrice); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bidRequest struct {
	Amount uint64 `json:"amount"`
}

func (h *Handler) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req bidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.PlaceBid(r.Context(), caller, id, req.Amount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type acceptRequest struct {
	Bidder string `json:"bidder"`
}

func (h *Handler) handleAcceptBid(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.AcceptBid(r.Context(), caller, id, domain.Principal(req.Bidder)); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetBid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	bidder := domain.Principal(chi.URLParam(r, "bidder"))
	bid, err := h.pool.GetBid(r.Context(), id, bidder)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, bid)
}

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.Deposit(r.Context(), caller, req.Amount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.Withdraw(r.Context(), caller, req.Amount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	balance, err := h.pool.Balance(r.Context(), caller)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

type adminRequest struct {
	Admin string `json:"admin"`
}

func (h *Handler) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.SetAdmin(r.Context(), domain.Principal(req.Admin)); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type feeRequest struct {
	Fee uint64 `json:"fee"`
}

func (h *Handler) handleSetFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req feeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pool.SetPoolFee(r.Context(), caller, req.Fee); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	caller := middleware.GetPrincipal(r.Context())
	if caller == "" {
		h.logger.ErrorContext(r.Context(), "principal missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return caller, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid listing id"))
		return 0, false
	}
	return id, true
}
