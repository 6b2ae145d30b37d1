package controllers

import (
	"fmt"
	"net/http"

	"github.com/quickkart/storefront-gateway/api/middleware"
	"github.com/quickkart/storefront-gateway/api/responses"
	"github.com/quickkart/storefront-gateway/api/validators"
	"github.com/quickkart/storefront-gateway/internal/events"
	"github.com/quickkart/storefront-gateway/internal/orders"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	"github.com/quickkart/storefront-gateway/pkg/logger"
)

// CheckoutController submits the cart snapshot as one order attempt. The cart
// is cleared only after the backend confirms the order.
type CheckoutController struct {
	engines engineProvider
	events  *events.Publisher
	logg    *logger.Logger
}

func NewCheckoutController(engines engineProvider, publisher *events.Publisher, logg *logger.Logger) (*CheckoutController, error) {
	if engines == nil {
		return nil, fmt.Errorf("engine provider is required")
	}
	return &CheckoutController{engines: engines, events: publisher, logg: logg}, nil
}

type checkoutRequest struct {
	PaymentMode string `json:"paymentMode" validate:"required"`
}

type checkoutResponse struct {
	Order *orders.Record `json:"order"`
}

func (c *CheckoutController) Submit(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req checkoutRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	mode, ok := orders.ParsePaymentMode(req.PaymentMode)
	if !ok {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment mode %q", req.PaymentMode)))
		return
	}

	snap := engine.Cart.Snapshot()
	receipt, err := engine.Submitter.Submit(r.Context(), snap, mode)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	engine.Cart.Clear()
	c.events.OrderPlaced(r.Context(), receipt.Record, receipt.Request, middleware.SessionIDFromContext(r.Context()))

	responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{Order: receipt.Record})
}
