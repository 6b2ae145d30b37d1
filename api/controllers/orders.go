package controllers

import (
	"fmt"
	"net/http"

	"github.com/quickkart/storefront-gateway/api/responses"
	"github.com/quickkart/storefront-gateway/api/validators"
	"github.com/quickkart/storefront-gateway/pkg/logger"
)

// OrdersController drives the session's order history pager.
type OrdersController struct {
	engines engineProvider
	logg    *logger.Logger
}

func NewOrdersController(engines engineProvider, logg *logger.Logger) (*OrdersController, error) {
	if engines == nil {
		return nil, fmt.Errorf("engine provider is required")
	}
	return &OrdersController{engines: engines, logg: logg}, nil
}

// List applies a new date range and returns the first page. Changing the
// range supersedes any fetch still in flight; its reply is dropped.
func (c *OrdersController) List(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	rng, err := validators.ParseDateRange(r.URL.Query())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := engine.Pager.SetDateRange(r.Context(), rng.From, rng.To); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, engine.Pager.Snapshot())
}

// NextPage appends the next history page. When no further page exists or a
// fetch is already running this is a no-op returning the current view.
func (c *OrdersController) NextPage(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := engine.Pager.LoadNextPage(r.Context()); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, engine.Pager.Snapshot())
}
