package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"finvoice/internal/invoice"
	platformmetrics "finvoice/internal/platform/metrics"
	"finvoice/internal/platform/middleware"
	"finvoice/internal/transport/http/shared"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
)

// Service defines the interface for invoice registry operations.
type Service interface {
	Mint(ctx context.Context, caller domain.Principal, params invoice.MintParams) (uint64, error)
	Transfer(ctx context.Context, caller domain.Principal, id uint64, recipient domain.Principal) error
	MarkPaid(ctx context.Context, caller domain.Principal, id uint64) error
	Update(ctx context.Context, caller domain.Principal, id, newAmount, newDueDate uint64) error
	Burn(ctx context.Context, caller domain.Principal, id uint64) error
	Get(ctx context.Context, id uint64) (*invoice.Invoice, error)
	GetAmendment(ctx context.Context, id uint64) (invoice.Amendment, error)
	Count(ctx context.Context) (uint64, error)
	SetAuthority(ctx context.Context, authority domain.Principal) error
	SetCreationFee(ctx context.Context, caller domain.Principal, fee uint64) error
}

// Handler handles invoice registry endpoints.
type Handler struct {
	logger       *slog.Logger
	invoices     Service
	metrics      *platformmetrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new invoice Handler.
func New(
	invoices Service,
	logger *slog.Logger,
	metrics *platformmetrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		invoices:     invoices,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the invoice routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(invoiceRouter chi.Router) {
		invoiceRouter.Use(middleware.Recovery(h.logger))
		invoiceRouter.Use(middleware.RequestID)
		invoiceRouter.Use(middleware.Logger(h.logger))
		invoiceRouter.Use(middleware.Timeout(30 * time.Second))
		invoiceRouter.Use(middleware.ContentTypeJSON)
		invoiceRouter.Use(middleware.LatencyMiddleware(h.metrics))
		invoiceRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		invoiceRouter.Post("/invoices", h.handleMint)
		invoiceRouter.Get("/invoices/count", h.handleCount)
		invoiceRouter.Get("/invoices/{id}", h.handleGet)
		invoiceRouter.Get("/invoices/{id}/amendment", h.handleGetAmendment)
		invoiceRouter.Post("/invoices/{id}/transfer", h.handleTransfer)
		invoiceRouter.Post("/invoices/{id}/pay", h.handleMarkPaid)
		invoiceRouter.Put("/invoices/{id}", h.handleUpdate)
		invoiceRouter.Delete("/invoices/{id}", h.handleBurn)
		invoiceRouter.Post("/invoices/authority", h.handleSetAuthority)
		invoiceRouter.Post("/invoices/fee", h.handleSetFee)
	})
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var params invoice.MintParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	id, err := h.invoices.Mint(ctx, caller, params)
	if err != nil {
		h.logger.WarnContext(ctx, "mint rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) handleGetAmendment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	a, err := h.invoices.GetAmendment(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, a)
}

type transferRequest struct {
	Recipient string `json:"recipient"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.invoices.Transfer(ctx, caller, id, domain.Principal(req.Recipient)); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.invoices.MarkPaid(r.Context(), caller, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateRequest struct {
	Amount  uint64 `json:"amount"`
	DueDate uint64 `json:"due_date"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.invoices.Update(r.Context(), caller, id, req.Amount, req.DueDate); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBurn(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.invoices.Burn(r.Context(), caller, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.invoices.Count(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

type authorityRequest struct {
	Authority string `json:"authority"`
}

func (h *Handler) handleSetAuthority(w http.ResponseWriter, r *http.Request) {
	var req authorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.invoices.SetAuthority(r.Context(), domain.Principal(req.Authority)); err != nil {
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
	if err := h.invoices.SetCreationFee(r.Context(), caller, req.Fee); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// caller pulls the authenticated principal set by RequireAuth.
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
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid invoice id"))
		return 0, false
	}
	return id, true
}
