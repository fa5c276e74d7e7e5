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
	jwttoken "finvoice/internal/jwt_token"
	"finvoice/internal/ledger"
	"finvoice/internal/platform/logger"
	"finvoice/internal/pool"
	"finvoice/internal/title"
	"finvoice/pkg/domain"
)

const (
	admin  = domain.Principal("ST1TEST")
	seller = domain.Principal("ST2TEST")
	bidder = domain.Principal("ST3TEST")
)

type PoolHandlerSuite struct {
	suite.Suite
	ctx    context.Context
	svc    *pool.Service
	jwt    *jwttoken.JWTService
	router chi.Router
}

func (s *PoolHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = pool.NewService(
		pool.NewInMemoryStore(),
		ledger.NewInMemoryLedger(),
		title.NewInMemoryRegistry(),
		chain.NewCounter(),
	)
	s.Require().NoError(s.svc.SetAdmin(s.ctx, admin))

	s.jwt = jwttoken.NewJWTService("test-key", "finvoice")
	h := New(s.svc, logger.New(), nil, jwttoken.NewJWTServiceAdapter(s.jwt))

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func TestPoolHandlerSuite(t *testing.T) {
	suite.Run(t, new(PoolHandlerSuite))
}

func (s *PoolHandlerSuite) do(method, path string, as domain.Principal, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != "" {
		token, err := s.jwt.GenerateAccessToken(as, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *PoolHandlerSuite) listBody() map[string]any {
	return map[string]any{
		"invoice_id":    1,
		"price":         1000,
		"min_price":     500,
		"max_bid":       2000,
		"duration":      100,
		"interest_rate": 10,
		"type":          "auction",
		"fee_rate":      5,
		"currency":      "STX",
	}
}

func (s *PoolHandlerSuite) TestListingFlow() {
	s.Run("creates a listing and serves it back", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/listings", seller, s.listBody())
		s.Require().Equal(http.StatusCreated, rec.Code)

		rec = s.do(http.MethodGet, "/listings/0", bidder, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var listing pool.Listing
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listing))
		s.Equal(uint64(1), listing.InvoiceID)
		s.True(listing.Active)
	})

	s.Run("duplicate invoice listings conflict", func() {
		s.SetupTest()
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/listings", seller, s.listBody()).Code)
		rec := s.do(http.MethodPost, "/listings", seller, s.listBody())
		s.Equal(http.StatusConflict, rec.Code)
	})

	s.Run("bid, accept, and observe the closed listing", func() {
		s.SetupTest()
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/listings", seller, s.listBody()).Code)

		rec := s.do(http.MethodPost, "/listings/0/bids", bidder, map[string]uint64{"amount": 800})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/listings/0/bids/"+string(bidder), seller, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var bid pool.Bid
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &bid))
		s.Equal(uint64(800), bid.Amount)

		rec = s.do(http.MethodPost, "/listings/0/accept", seller, map[string]string{"bidder": string(bidder)})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/listings/0", seller, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var listing pool.Listing
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &listing))
		s.False(listing.Active)
	})

	s.Run("count and existence reads", func() {
		s.SetupTest()
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/listings", seller, s.listBody()).Code)

		rec := s.do(http.MethodGet, "/listings/count", seller, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var count map[string]uint64
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &count))
		s.Equal(uint64(1), count["count"])

		rec = s.do(http.MethodGet, "/listings/invoice/1", seller, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var exists map[string]bool
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &exists))
		s.True(exists["exists"])

		rec = s.do(http.MethodGet, "/listings/invoice/99", seller, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &exists))
		s.False(exists["exists"])
	})

	s.Run("out-of-bounds bids get 400", func() {
		s.SetupTest()
		s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/listings", seller, s.listBody()).Code)
		rec := s.do(http.MethodPost, "/listings/0/bids", bidder, map[string]uint64{"amount": 100})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *PoolHandlerSuite) TestBalances() {
	s.Run("deposit and withdraw round-trip", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/pool/deposit", bidder, map[string]uint64{"amount": 1000})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodPost, "/pool/withdraw", bidder, map[string]uint64{"amount": 400})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/pool/balance", bidder, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp map[string]uint64
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal(uint64(600), resp["balance"])
	})

	s.Run("overdrafts conflict", func() {
		s.SetupTest()
		rec := s.do(http.MethodPost, "/pool/withdraw", bidder, map[string]uint64{"amount": 1})
		s.Equal(http.StatusConflict, rec.Code)
	})
}
