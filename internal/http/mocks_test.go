package http

import (
	"context"
	"sync"

	"github.com/Joebakid/Gudrix/internal/catalog"
	"github.com/Joebakid/Gudrix/internal/domain"
	"github.com/Joebakid/Gudrix/internal/verification"
	"github.com/shopspring/decimal"
)

type stubCatalog struct {
	prices map[string]decimal.Decimal
	err    error
}

func (c stubCatalog) LineItem(_ context.Context, productID string, variant *string, quantity int) (domain.LineItem, error) {
	if c.err != nil {
		return domain.LineItem{}, c.err
	}
	price, ok := c.prices[productID]
	if !ok {
		return domain.LineItem{}, catalog.ErrProductNotFound
	}
	return domain.LineItem{
		ProductID: productID,
		Variant:   domain.NormalizeVariant(variant),
		Quantity:  quantity,
		UnitPrice: price,
		Name:      "Product " + productID,
	}, nil
}

type stubVerifier struct {
	mu       sync.Mutex
	requests []domain.VerificationRequest
	outcome  *verification.Outcome
	err      error
}

func (s *stubVerifier) Verify(_ context.Context, req domain.VerificationRequest) (*verification.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if s.outcome != nil {
		return s.outcome, nil
	}
	return &verification.Outcome{Order: &domain.CheckoutOrder{Reference: req.Reference}}, nil
}

type failingLister struct{ err error }

func (f failingLister) List(context.Context, int) ([]*domain.CheckoutOrder, error) {
	return nil, f.err
}
