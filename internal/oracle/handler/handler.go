package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"finvoice/internal/oracle"
	platformmetrics "finvoice/internal/platform/metrics"
	"finvoice/internal/platform/middleware"
	"finvoice/internal/transport/http/shared"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
)

// Service defines the interface for oracle registry operations.
type Service interface {
	Register(ctx context.Context, caller domain.Principal, params oracle.RegisterParams) (uint64, error)
	Update(ctx context.Context, caller domain.Principal, id uint64, params oracle.UpdateParams) error
	Report(ctx context.Context, caller domain.Principal, invoiceID uint64, params oracle.ReportParams) error
	Get(ctx context.Context, id uint64) (*oracle.Oracle, error)
	CountOracles(ctx context.Context) (int, error)
	CheckExistence(ctx context.Context, name string) (bool, error)
	GetVerification(ctx context.Context, invoiceID uint64) (oracle.Verification, error)
	ListReports(ctx context.Context, invoiceID uint64) ([]oracle.Report, error)
	SetAuthority(ctx context.Context, caller, authority domain.Principal) error
	SetOracleFee(ctx context.Context, caller domain.Principal, fee uint64) error
	SetMaxOracles(ctx context.Context, caller domain.Principal, limit int) error
	SetMaxReports(ctx context.Context, caller domain.Principal, limit int) error
}

// Handler handles oracle registry endpoints.
type Handler struct {
	logger       *slog.Logger
	oracles      Service
	metrics      *platformmetrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new oracle Handler.
func New(
	oracles Service,
	logger *slog.Logger,
	metrics *platformmetrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		oracles:      oracles,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the oracle routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(oracleRouter chi.Router) {
		oracleRouter.Use(middleware.Recovery(h.logger))
		oracleRouter.Use(middleware.RequestID)
		oracleRouter.Use(middleware.Logger(h.logger))
		oracleRouter.Use(middleware.Timeout(30 * time.Second))
		oracleRouter.Use(middleware.ContentTypeJSON)
		oracleRouter.Use(middleware.LatencyMiddleware(h.metrics))
		oracleRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		oracleRouter.Post("/oracles", h.handleRegister)
		oracleRouter.Get("/oracles/count", h.handleCount)
		oracleRouter.Get("/oracles/exists", h.handleCheckExistence)
		oracleRouter.Put("/oracles/{id}", h.handleUpdate)
		oracleRouter.Get("/oracles/{id}", h.handleGet)
		oracleRouter.Post("/payments/{id}/reports", h.handleReport)
		oracleRouter.Get("/payments/{id}", h.handleGetVerification)
		oracleRouter.Get("/payments/{id}/reports", h.handleListReports)
		oracleRouter.Post("/oracles/authority", h.handleSetAuthority)
		oracleRouter.Post("/oracles/fee", h.handleSetFee)
		oracleRouter.Post("/oracles/limits", h.handleSetLimits)
	})
}

type registerRequest struct {
	Name            string `json:"name"`
	Location        string `json:"location"`
	VotingThreshold uint64 `json:"voting_threshold"`
	GracePeriod     uint64 `json:"grace_period"`
	InterestRate    uint64 `json:"interest_rate"`
	PenaltyRate     uint64 `json:"penalty_rate"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params := oracle.RegisterParams{
		Name:            req.Name,
		Location:        req.Location,
		VotingThreshold: req.VotingThreshold,
		GracePeriod:     req.GracePeriod,
		InterestRate:    req.InterestRate,
		PenaltyRate:     req.PenaltyRate,
	}
	id, err := h.oracles.Register(ctx, caller, params)
	if err != nil {
		h.logger.WarnContext(ctx, "oracle registration rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

type updateOracleRequest struct {
	Name            string `json:"name"`
	Location        string `json:"location"`
	VotingThreshold uint64 `json:"voting_threshold"`
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

	var req updateOracleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	params := oracle.UpdateParams{
		Name:            req.Name,
		Location:        req.Location,
		VotingThreshold: req.VotingThreshold,
	}
	if err := h.oracles.Update(r.Context(), caller, id, params); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	o, err := h.oracles.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.oracles.CountOracles(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleCheckExistence(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "name query parameter required"))
		return
	}
	exists, err := h.oracles.CheckExistence(r.Context(), name)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

type reportRequest struct {
	Timestamp    uint64 `json:"timestamp"`
	Amount       uint64 `json:"amount"`
	Currency     string `json:"currency"`
	Early        bool   `json:"early"`
	GracePeriod  uint64 `json:"grace_period"`
	InterestRate uint64 `json:"interest_rate"`
	PenaltyRate  uint64 `json:"penalty_rate"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	params := oracle.ReportParams{
		Timestamp:    req.Timestamp,
		Amount:       req.Amount,
		Currency:     oracle.Currency(req.Currency),
		Early:        req.Early,
		GracePeriod:  req.GracePeriod,
		InterestRate: req.InterestRate,
		PenaltyRate:  req.PenaltyRate,
	}
	if err := h.oracles.Report(r.Context(), caller, id, params); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	v, err := h.oracles.GetVerification(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	reports, err := h.oracles.ListReports(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, reports)
}

type authorityRequest struct {
	Authority string `json:"authority"`
}

func (h *Handler) handleSetAuthority(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req authorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.oracles.SetAuthority(r.Context(), caller, domain.Principal(req.Authority)); err != nil {
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
	if err := h.oracles.SetOracleFee(r.Context(), caller, req.Fee); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type limitsRequest struct {
	MaxOracles int `json:"max_oracles"`
	MaxReports int `json:"max_reports"`
}

// handleSetLimits updates whichever caps the request carries; zero fields
// are left unchanged.
func (h *Handler) handleSetLimits(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req limitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.MaxOracles == 0 && req.MaxReports == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "no limits supplied"))
		return
	}
	if req.MaxOracles != 0 {
		if err := h.oracles.SetMaxOracles(r.Context(), caller, req.MaxOracles); err != nil {
			shared.WriteError(w, err)
			return
		}
	}
	if req.MaxReports != 0 {
		if err := h.oracles.SetMaxReports(r.Context(), caller, req.MaxReports); err != nil {
			shared.WriteError(w, err)
			return
		}
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
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid id"))
		return 0, false
	}
	return id, true
}
