package controllers

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quickkart/storefront-gateway/internal/cart"
	"github.com/quickkart/storefront-gateway/internal/catalog"
	"github.com/quickkart/storefront-gateway/internal/checkout"
	"github.com/quickkart/storefront-gateway/internal/orders"
	"github.com/quickkart/storefront-gateway/internal/session"
	"github.com/quickkart/storefront-gateway/pkg/money"
	"github.com/quickkart/storefront-gateway/pkg/pagination"
)

type stubEngines struct {
	engine *session.Engine
	err    error
}

func (s stubEngines) Engine(context.Context, string) (*session.Engine, error) {
	return s.engine, s.err
}

type stubCatalog struct {
	categories []catalog.Category
	products   map[string][]catalog.Product
	err        error
}

func (s *stubCatalog) ListCategories(context.Context) ([]catalog.Category, error) {
	return s.categories, s.err
}

func (s *stubCatalog) ListProductsByCategory(_ context.Context, categoryID string) ([]catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products[categoryID], nil
}

type stubOrderAPI struct {
	requests []orders.Request
	record   *orders.Record
	err      error
}

func (s *stubOrderAPI) Create(_ context.Context, req orders.Request) (*orders.Record, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

type stubHistoryAPI struct {
	page *orders.Page
	err  error
}

func (s *stubHistoryAPI) List(context.Context, time.Time, time.Time, pagination.Page) (*orders.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func paise(v money.Paise) *money.Paise { return &v }

func testEngine(t *testing.T, cat catalog.Catalog, orderAPI checkout.OrderAPI, historyAPI orders.HistoryAPI) *session.Engine {
	t.Helper()
	if orderAPI == nil {
		orderAPI = &stubOrderAPI{record: &orders.Record{ID: "ord-1"}}
	}
	if historyAPI == nil {
		historyAPI = &stubHistoryAPI{page: &orders.Page{}}
	}
	submitter, err := checkout.NewSubmitter(orderAPI, nil)
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	pager, err := orders.NewPager(historyAPI, pagination.DefaultPageSize, nil)
	if err != nil {
		t.Fatalf("new pager: %v", err)
	}
	return &session.Engine{
		Cart:      cart.NewStore(),
		Catalog:   cat,
		Submitter: submitter,
		Pager:     pager,
	}
}

func decodeEnvelope(t *testing.T, body io.Reader, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func cartRouter(t *testing.T, engines engineProvider) *chi.Mux {
	t.Helper()
	ctrl, err := NewCartController(engines, nil)
	if err != nil {
		t.Fatalf("new cart controller: %v", err)
	}
	router := chi.NewRouter()
	router.Get("/cart", ctrl.Get)
	router.Post("/cart/items", ctrl.AddItem)
	router.Post("/cart/items/{productId}/decrement", ctrl.DecrementItem)
	router.Delete("/cart/items/{productId}", ctrl.RemoveItem)
	router.Delete("/cart", ctrl.Clear)
	return router
}
