package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"finvoice/internal/chain"
	"finvoice/internal/invoice"
	jwttoken "finvoice/internal/jwt_token"
	"finvoice/internal/ledger"
	"finvoice/internal/platform/logger"
	"finvoice/internal/title"
	"finvoice/pkg/domain"
)

const (
	authority = domain.Principal("ST1TEST")
	supplier  = domain.Principal("ST2TEST")
	buyer     = domain.Principal("ST3TEST")
)

type InvoiceHandlerSuite struct {
	suite.Suite
	ctx     context.Context
	svc     *invoice.Service
	jwt     *jwttoken.JWTService
	router  chi.Router
	heights *chain.Counter
}

func (s *InvoiceHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.heights = chain.NewCounter()
	s.svc = invoice.NewService(
		invoice.NewInMemoryStore(),
		ledger.NewInMemoryLedger(),
		title.NewInMemoryRegistry(),
		s.heights,
	)
	s.Require().NoError(s.svc.SetAuthority(s.ctx, authority))

	s.jwt = jwttoken.NewJWTService("test-key", "finvoice")
	log := logger.New()
	h := New(s.svc, log, nil, jwttoken.NewJWTServiceAdapter(s.jwt))

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestInvoiceHandlerSuite(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerSuite))
}

func (s *InvoiceHandlerSuite) token(p domain.Principal) string {
	token, err := s.jwt.GenerateAccessToken(p, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *InvoiceHandlerSuite) do(method, path string, as domain.Principal, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(as))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *InvoiceHandlerSuite) mintBody() map[string]any {
	return map[string]any{
		"amount":        1000,
		"due_date":      100,
		"buyer":         string(buyer),
		"description":   "Office supplies Q3",
		"currency":      "STX",
		"discount_rate": 5,
		"penalty_rate":  10,
		"location":      "Stockholm",
		"terms":         "net 30",
		"quantity":      10,
		"unit_price":    100,
	}
}

func (s *InvoiceHandlerSuite) TestMint() {
	s.Run("mints and returns the new id", func() {
		rec := s.do(http.MethodPost, "/invoices", supplier, s.mintBody())
		s.Require().Equal(http.StatusCreated, rec.Code)

		var resp map[string]uint64
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(uint64(0), resp["id"])
	})

	s.Run("requires authentication", func() {
		rec := s.do(http.MethodPost, "/invoices", "", s.mintBody())
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("maps validation failures to 400 with the numeric code", func() {
		body := s.mintBody()
		body["amount"] = 0
		rec := s.do(http.MethodPost, "/invoices", supplier, body)
		s.Require().Equal(http.StatusBadRequest, rec.Code)

		var resp struct {
			Error string `json:"error"`
			Code  int    `json:"code"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("validation", resp.Error)
		s.Equal(101, resp.Code)
	})
}

func (s *InvoiceHandlerSuite) TestLifecycleOverHTTP() {
	s.Run("get, pay, and observe the terminal state", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/invoices", supplier, s.mintBody())
		s.Require().Equal(http.StatusCreated, rec.Code)

		rec = s.do(http.MethodGet, "/invoices/0", buyer, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var inv invoice.Invoice
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &inv))
		s.Equal(uint64(1000), inv.Amount)
		s.False(inv.Paid)

		rec = s.do(http.MethodPost, "/invoices/0/pay", buyer, nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)

		// Paying again hits the terminal-state guard.
		rec = s.do(http.MethodPost, "/invoices/0/pay", buyer, nil)
		s.Require().Equal(http.StatusConflict, rec.Code)
	})

	s.Run("forbidden callers get 403", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/invoices", supplier, s.mintBody())
		s.Require().Equal(http.StatusCreated, rec.Code)

		rec = s.do(http.MethodPost, "/invoices/0/pay", supplier, nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("unknown invoices get 404", func() {
		s.SetupTest()
		rec := s.do(http.MethodGet, "/invoices/42", buyer, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("amendments round-trip", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/invoices", supplier, s.mintBody())
		s.Require().Equal(http.StatusCreated, rec.Code)

		rec = s.do(http.MethodPut, "/invoices/0", supplier, map[string]any{"amount": 2000, "due_date": 200})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/invoices/0/amendment", supplier, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var a invoice.Amendment
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &a))
		s.Equal(uint64(2000), a.Amount)
		s.Equal(supplier, a.Updater)
	})

	s.Run("burn removes the invoice", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/invoices", supplier, s.mintBody())
		s.Require().Equal(http.StatusCreated, rec.Code)

		rec = s.do(http.MethodDelete, "/invoices/0", supplier, nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/invoices/0", supplier, nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("count reflects mints", func() {
		s.SetupTest()
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/invoices", supplier, s.mintBody()).Code)

		rec := s.do(http.MethodGet, "/invoices/count", supplier, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp map[string]uint64
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(uint64(1), resp["count"])
	})
}

func (s *InvoiceHandlerSuite) TestConfiguration() {
	s.Run("second authority configuration conflicts", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/invoices/authority", supplier, map[string]string{"authority": "ST9TEST"})
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("fee changes are authority-gated", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/invoices/fee", supplier, map[string]uint64{"fee": 900})
		s.Require().Equal(http.StatusForbidden, rec.Code)

		rec = s.do(http.MethodPost, "/invoices/fee", authority, map[string]uint64{"fee": 900})
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("malformed ids get 400", func() {
		s.SetupTest()
		rec := s.do(http.MethodGet, "/invoices/abc", supplier, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
