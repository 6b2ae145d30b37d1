package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quickkart/storefront-gateway/internal/cart"
	"github.com/quickkart/storefront-gateway/internal/orders"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
)

// OrderAPI creates an order on the commerce backend.
type OrderAPI interface {
	Create(ctx context.Context, req orders.Request) (*orders.Record, error)
}

type submitMeter interface {
	IncOrderSubmitted(outcome string)
}

// Submitter turns a cart snapshot into one create-order attempt. It never
// retries on its own: a failed attempt surfaces the reason and any retry is a
// fresh, explicit call. Clearing the cart after success is the caller's job.
type Submitter struct {
	api     OrderAPI
	metrics submitMeter
}

// NewSubmitter builds a submitter over the provided order API.
func NewSubmitter(api OrderAPI, metrics submitMeter) (*Submitter, error) {
	if api == nil {
		return nil, fmt.Errorf("order api required")
	}
	return &Submitter{api: api, metrics: metrics}, nil
}

// Receipt pairs the created order with the request that produced it.
type Receipt struct {
	Record  *orders.Record
	Request orders.Request
}

// Submit validates the snapshot, builds an immutable order request and issues
// exactly one create call. The request total is the snapshot's total captured
// at build time; the cart is never re-read during the call.
func (s *Submitter) Submit(ctx context.Context, snap cart.Snapshot, mode orders.PaymentMode) (*Receipt, error) {
	if snap.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot submit an empty cart")
	}
	if _, ok := orders.ParsePaymentMode(string(mode)); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment mode %q", mode))
	}

	req := buildRequest(snap, mode)
	record, err := s.api.Create(ctx, req)
	if err != nil {
		s.count("failure")
		return nil, err
	}
	s.count("success")
	return &Receipt{Record: record, Request: req}, nil
}

func buildRequest(snap cart.Snapshot, mode orders.PaymentMode) orders.Request {
	items := make([]orders.RequestItem, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		items = append(items, orders.RequestItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return orders.Request{
		ClientRequestID: uuid.NewString(),
		PaymentMode:     mode,
		Items:           items,
		TotalAmount:     snap.Total,
	}
}

func (s *Submitter) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncOrderSubmitted(outcome)
	}
}
