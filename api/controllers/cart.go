package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickkart/storefront-gateway/api/responses"
	"github.com/quickkart/storefront-gateway/api/validators"
	"github.com/quickkart/storefront-gateway/internal/catalog"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	"github.com/quickkart/storefront-gateway/pkg/logger"
)

// CartController exposes the session cart. Prices are resolved server-side
// from the catalog, never taken from the request body.
type CartController struct {
	engines engineProvider
	logg    *logger.Logger
}

func NewCartController(engines engineProvider, logg *logger.Logger) (*CartController, error) {
	if engines == nil {
		return nil, fmt.Errorf("engine provider is required")
	}
	return &CartController{engines: engines, logg: logg}, nil
}

type addItemRequest struct {
	ProductID  string `json:"productId" validate:"required"`
	CategoryID string `json:"categoryId" validate:"required"`
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, engine.Cart.Snapshot())
}

// AddItem looks the product up in its category and adds or increments it.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req addItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	product, err := c.findProduct(r, engine.Catalog, req.CategoryID, req.ProductID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := engine.Cart.AddOrIncrement(*product); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, engine.Cart.Snapshot())
}

func (c *CartController) DecrementItem(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	engine.Cart.DecrementOrRemove(chi.URLParam(r, "productId"))
	responses.WriteSuccess(w, engine.Cart.Snapshot())
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	engine.Cart.Remove(chi.URLParam(r, "productId"))
	responses.WriteSuccess(w, engine.Cart.Snapshot())
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	engine.Cart.Clear()
	responses.WriteSuccess(w, engine.Cart.Snapshot())
}

func (c *CartController) findProduct(r *http.Request, cat catalog.Catalog, categoryID, productID string) (*catalog.Product, error) {
	products, err := cat.ListProductsByCategory(r.Context(), categoryID)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in category")
}
