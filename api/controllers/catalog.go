package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickkart/storefront-gateway/api/responses"
	"github.com/quickkart/storefront-gateway/pkg/logger"
)

// CatalogController proxies category and product reads through the caller's
// session so the upstream sees its own credential.
type CatalogController struct {
	engines engineProvider
	logg    *logger.Logger
}

func NewCatalogController(engines engineProvider, logg *logger.Logger) (*CatalogController, error) {
	if engines == nil {
		return nil, fmt.Errorf("engine provider is required")
	}
	return &CatalogController{engines: engines, logg: logg}, nil
}

func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	categories, err := engine.Catalog.ListCategories(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, categories)
}

func (c *CatalogController) ListProducts(w http.ResponseWriter, r *http.Request) {
	engine, err := engineFor(r, c.engines)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	products, err := engine.Catalog.ListProductsByCategory(r.Context(), chi.URLParam(r, "categoryId"))
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, products)
}
