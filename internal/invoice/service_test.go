package invoice

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"finvoice/internal/chain"
	"finvoice/internal/ledger"
	"finvoice/internal/title"
	"finvoice/pkg/domain"
	dErrors "finvoice/pkg/domain-errors"
)

const (
	authority = domain.Principal("ST1TEST")
	supplier  = domain.Principal("ST2TEST")
	buyer     = domain.Principal("ST3TEST")
	stranger  = domain.Principal("ST4TEST")
)

type InvoiceServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemoryStore
	funds   *ledger.InMemoryLedger
	titles  *title.InMemoryRegistry
	heights *chain.Counter
	svc     *Service
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.funds = ledger.NewInMemoryLedger()
	s.titles = title.NewInMemoryRegistry()
	s.heights = chain.NewCounter()
	s.svc = NewService(s.store, s.funds, s.titles, s.heights)
	s.Require().NoError(s.svc.SetAuthority(s.ctx, authority))
}

func TestInvoiceServiceSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) validParams() MintParams {
	return MintParams{
		Amount:       1000,
		DueDate:      100,
		Buyer:        buyer,
		Description:  "Office supplies Q3",
		Currency:     CurrencySTX,
		DiscountRate: 5,
		PenaltyRate:  10,
		Location:     "Stockholm",
		Terms:        "net 30",
		Quantity:     10,
		UnitPrice:    100,
	}
}

func (s *InvoiceServiceSuite) mint() uint64 {
	id, err := s.svc.Mint(s.ctx, supplier, s.validParams())
	s.Require().NoError(err)
	return id
}

func (s *InvoiceServiceSuite) TestMint() {
	s.Run("assigns ids from zero and stores all fields", func() {
		s.SetupTest()
		id := s.mint()
		s.Equal(uint64(0), id)

		inv, err := s.svc.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(uint64(1000), inv.Amount)
		s.Equal(uint64(100), inv.DueDate)
		s.Equal(buyer, inv.Buyer)
		s.Equal(supplier, inv.Supplier)
		s.False(inv.Paid)
		s.Equal(StatusPending, inv.Status)
		s.Equal("Stockholm", inv.Location)
		s.Equal(uint64(10), inv.Quantity)
		s.Equal(uint64(100), inv.UnitPrice)

		next, err := s.svc.Mint(s.ctx, supplier, s.validParams())
		s.Require().NoError(err)
		s.Equal(uint64(1), next)
	})

	s.Run("charges the creation fee to the authority", func() {
		s.SetupTest()
		s.mint()
		journal := s.funds.Journal()
		s.Require().Len(journal, 1)
		s.Equal(uint64(500), journal[0].Amount)
		s.Equal(supplier, journal[0].From)
		s.Equal(authority, journal[0].To)
	})

	s.Run("grants title to the supplier", func() {
		s.SetupTest()
		id := s.mint()
		owner, err := s.titles.OwnerOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(supplier, owner)
	})

	s.Run("counts every mint", func() {
		s.SetupTest()
		s.mint()
		s.mint()
		count, err := s.svc.Count(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(2), count)
	})
}

func (s *InvoiceServiceSuite) TestMintValidation() {
	cases := []struct {
		name   string
		mutate func(*MintParams)
		num    int
	}{
		{"zero amount", func(p *MintParams) { p.Amount = 0 }, 101},
		{"due date not in future", func(p *MintParams) { p.DueDate = 0 }, 102},
		{"buyer equals supplier", func(p *MintParams) { p.Buyer = supplier }, 103},
		{"empty description", func(p *MintParams) { p.Description = "" }, 108},
		{"description too long", func(p *MintParams) { p.Description = strings.Repeat("x", 501) }, 108},
		{"multibyte description too long", func(p *MintParams) { p.Description = strings.Repeat("ü", 501) }, 108},
		{"unknown currency", func(p *MintParams) { p.Currency = "EUR" }, 109},
		{"discount above cap", func(p *MintParams) { p.DiscountRate = 51 }, 115},
		{"penalty above cap", func(p *MintParams) { p.PenaltyRate = 101 }, 116},
		{"empty location", func(p *MintParams) { p.Location = "" }, 117},
		{"zero quantity", func(p *MintParams) { p.Quantity = 0 }, 119},
		{"zero unit price", func(p *MintParams) { p.UnitPrice = 0 }, 120},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			params := s.validParams()
			tc.mutate(&params)
			_, err := s.svc.Mint(s.ctx, supplier, params)
			s.Require().Error(err)
			s.Equal(tc.num, dErrors.Num(err))
		})
	}

	s.Run("bounds count characters, not bytes", func() {
		s.SetupTest()
		params := s.validParams()
		params.Description = strings.Repeat("ü", 500)
		params.Location = strings.Repeat("ü", 100)
		params.Terms = strings.Repeat("ü", 1000)
		_, err := s.svc.Mint(s.ctx, supplier, params)
		s.Require().NoError(err)
	})

	s.Run("rejects minting without a configured authority", func() {
		s.SetupTest()
		svc := NewService(NewInMemoryStore(), s.funds, s.titles, s.heights)
		_, err := svc.Mint(s.ctx, supplier, s.validParams())
		s.Require().Error(err)
		s.Equal(107, dErrors.Num(err))
	})

	s.Run("charges nothing on a rejected mint", func() {
		s.SetupTest()
		params := s.validParams()
		params.Amount = 0
		_, err := s.svc.Mint(s.ctx, supplier, params)
		s.Require().Error(err)
		s.Empty(s.funds.Journal())
	})

	s.Run("enforces the per-supplier cap", func() {
		s.SetupTest()
		svc := NewService(NewInMemoryStore(), ledger.NewInMemoryLedger(), title.NewInMemoryRegistry(), s.heights,
			WithCapacity(defaultMaxInvoices, 2))
		s.Require().NoError(svc.SetAuthority(s.ctx, authority))
		for range 2 {
			_, err := svc.Mint(s.ctx, supplier, s.validParams())
			s.Require().NoError(err)
		}
		_, err := svc.Mint(s.ctx, supplier, s.validParams())
		s.Require().Error(err)
		s.Equal(114, dErrors.Num(err))
		s.True(dErrors.Is(err, dErrors.CodeCapacity))
	})

	s.Run("enforces the global cap", func() {
		s.SetupTest()
		svc := NewService(NewInMemoryStore(), ledger.NewInMemoryLedger(), title.NewInMemoryRegistry(), s.heights,
			WithCapacity(1, defaultMaxPerSupplier))
		s.Require().NoError(svc.SetAuthority(s.ctx, authority))
		_, err := svc.Mint(s.ctx, supplier, s.validParams())
		s.Require().NoError(err)
		_, err = svc.Mint(s.ctx, stranger, s.validParams())
		s.Require().Error(err)
		s.Equal(114, dErrors.Num(err))
	})
}

func (s *InvoiceServiceSuite) TestTransfer() {
	s.Run("moves supplier field and title", func() {
		s.SetupTest()
		id := s.mint()
		s.Require().NoError(s.svc.Transfer(s.ctx, supplier, id, stranger))

		inv, err := s.svc.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(stranger, inv.Supplier)

		owner, err := s.titles.OwnerOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(stranger, owner)
	})

	s.Run("rejects non-supplier callers", func() {
		s.SetupTest()
		id := s.mint()
		err := s.svc.Transfer(s.ctx, stranger, id, buyer)
		s.Require().Error(err)
		s.Equal(100, dErrors.Num(err))
	})

	s.Run("rejects paid invoices", func() {
		s.SetupTest()
		id := s.mint()
		s.Require().NoError(s.svc.MarkPaid(s.ctx, buyer, id))
		err := s.svc.Transfer(s.ctx, supplier, id, stranger)
		s.Require().Error(err)
		s.Equal(111, dErrors.Num(err))
	})

	s.Run("allows transfer right before the due date", func() {
		s.SetupTest()
		id := s.mint()
		s.heights.SetHeight(99)
		s.Require().NoError(s.svc.Transfer(s.ctx, supplier, id, stranger))
	})

	s.Run("rejects transfer at and past the due date", func() {
		s.SetupTest()
		id := s.mint()
		s.heights.SetHeight(100)
		err := s.svc.Transfer(s.ctx, supplier, id, stranger)
		s.Require().Error(err)
		s.Equal(112, dErrors.Num(err))

		s.heights.SetHeight(101)
		err = s.svc.Transfer(s.ctx, supplier, id, stranger)
		s.Require().Error(err)
		s.Equal(112, dErrors.Num(err))
	})

	s.Run("rejects unknown invoices", func() {
		s.SetupTest()
		err := s.svc.Transfer(s.ctx, supplier, 42, stranger)
		s.Require().Error(err)
		s.Equal(105, dErrors.Num(err))
	})
}

func (s *InvoiceServiceSuite) TestMarkPaid() {
	s.Run("only the buyer can pay", func() {
		s.SetupTest()
		id := s.mint()
		err := s.svc.MarkPaid(s.ctx, supplier, id)
		s.Require().Error(err)
		s.Equal(100, dErrors.Num(err))

		s.Require().NoError(s.svc.MarkPaid(s.ctx, buyer, id))
		inv, err := s.svc.Get(s.ctx, id)
		s.Require().NoError(err)
		s.True(inv.Paid)
		s.Equal(StatusPaid, inv.Status)
	})

	s.Run("payment is one-way", func() {
		s.SetupTest()
		id := s.mint()
		s.Require().NoError(s.svc.MarkPaid(s.ctx, buyer, id))
		err := s.svc.MarkPaid(s.ctx, buyer, id)
		s.Require().Error(err)
		s.Equal(111, dErrors.Num(err))
	})
}

func (s *InvoiceServiceSuite) TestUpdate() {
	s.Run("amends terms and records the amendment", func() {
		s.SetupTest()
		id := s.mint()
		s.heights.SetHeight(10)
		s.Require().NoError(s.svc.Update(s.ctx, supplier, id, 2000, 200))

		inv, err := s.svc.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(uint64(2000), inv.Amount)
		s.Equal(uint64(200), inv.DueDate)
		s.Equal(uint64(10), inv.CreatedAt)

		a, err := s.svc.GetAmendment(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(uint64(2000), a.Amount)
		s.Equal(uint64(200), a.DueDate)
		s.Equal(uint64(10), a.UpdatedAt)
		s.Equal(supplier, a.Updater)
	})

	s.Run("rejects bad parameters", func() {
		s.SetupTest()
		id := s.mint()
		err := s.svc.Update(s.ctx, supplier, id, 0, 200)
		s.Require().Error(err)
		s.Equal(113, dErrors.Num(err))

		s.heights.SetHeight(50)
		err = s.svc.Update(s.ctx, supplier, id, 2000, 50)
		s.Require().Error(err)
		s.Equal(113, dErrors.Num(err))
	})

	s.Run("rejects non-supplier and paid invoices", func() {
		s.SetupTest()
		id := s.mint()
		err := s.svc.Update(s.ctx, stranger, id, 2000, 200)
		s.Require().Error(err)
		s.Equal(100, dErrors.Num(err))

		s.Require().NoError(s.svc.MarkPaid(s.ctx, buyer, id))
		err = s.svc.Update(s.ctx, supplier, id, 2000, 200)
		s.Require().Error(err)
		s.Equal(111, dErrors.Num(err))
	})
}

func (s *InvoiceServiceSuite) TestBurn() {
	s.Run("removes the invoice, its amendment, and its title", func() {
		s.SetupTest()
		id := s.mint()
		s.Require().NoError(s.svc.Update(s.ctx, supplier, id, 2000, 200))
		s.Require().NoError(s.svc.Burn(s.ctx, supplier, id))

		_, err := s.svc.Get(s.ctx, id)
		s.Require().Error(err)
		s.Equal(105, dErrors.Num(err))

		_, err = s.svc.GetAmendment(s.ctx, id)
		s.Require().Error(err)

		_, err = s.titles.OwnerOf(s.ctx, id)
		s.Require().Error(err)
	})

	s.Run("rejects non-supplier and paid invoices", func() {
		s.SetupTest()
		id := s.mint()
		err := s.svc.Burn(s.ctx, stranger, id)
		s.Require().Error(err)
		s.Equal(100, dErrors.Num(err))

		s.Require().NoError(s.svc.MarkPaid(s.ctx, buyer, id))
		err = s.svc.Burn(s.ctx, supplier, id)
		s.Require().Error(err)
		s.Equal(111, dErrors.Num(err))
	})

	s.Run("does not reuse burned ids", func() {
		s.SetupTest()
		id := s.mint()
		s.Require().NoError(s.svc.Burn(s.ctx, supplier, id))
		next := s.mint()
		s.Equal(id+1, next)
	})
}

func (s *InvoiceServiceSuite) TestAuthority() {
	s.Run("rejects the burn address", func() {
		s.SetupTest()
		svc := NewService(NewInMemoryStore(), s.funds, s.titles, s.heights)
		err := svc.SetAuthority(s.ctx, domain.BurnAddress)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("is settable exactly once", func() {
		s.SetupTest()
		err := s.svc.SetAuthority(s.ctx, stranger)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))

		got, ok := s.svc.Authority()
		s.True(ok)
		s.Equal(authority, got)
	})

	s.Run("gates fee changes to the authority", func() {
		s.SetupTest()
		err := s.svc.SetCreationFee(s.ctx, stranger, 900)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))

		s.Require().NoError(s.svc.SetCreationFee(s.ctx, authority, 900))
		s.Equal(uint64(900), s.svc.CreationFee())

		s.mint()
		journal := s.funds.Journal()
		s.Require().Len(journal, 1)
		s.Equal(uint64(900), journal[0].Amount)
	})

	s.Run("rejects fee changes before an authority exists", func() {
		s.SetupTest()
		svc := NewService(NewInMemoryStore(), s.funds, s.titles, s.heights)
		err := svc.SetCreationFee(s.ctx, authority, 900)
		s.Require().Error(err)
		s.Equal(107, dErrors.Num(err))
	})
}
