package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickkart/storefront-gateway/api/controllers"
	"github.com/quickkart/storefront-gateway/api/middleware"
	"github.com/quickkart/storefront-gateway/internal/events"
	"github.com/quickkart/storefront-gateway/internal/session"
	"github.com/quickkart/storefront-gateway/internal/upstream"
	"github.com/quickkart/storefront-gateway/pkg/config"
	"github.com/quickkart/storefront-gateway/pkg/logger"
	"github.com/quickkart/storefront-gateway/pkg/metrics"
	pkgredis "github.com/quickkart/storefront-gateway/pkg/redis"
)

// Dependencies carries everything the router needs to assemble controllers.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.GatewayMetrics
	Gatherer prometheus.Gatherer
	Upstream *upstream.Client
	Sessions *session.Manager
	Events   *events.Publisher
	Redis    *pkgredis.Client
	Health   *controllers.HealthController
}

// NewRouter wires middleware, probes and the versioned API surface.
func NewRouter(deps Dependencies) (*chi.Mux, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Upstream == nil {
		return nil, fmt.Errorf("upstream client is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}

	authCtrl, err := controllers.NewAuthController(deps.Upstream, deps.Sessions, deps.Config.JWT, deps.Logger)
	if err != nil {
		return nil, err
	}
	catalogCtrl, err := controllers.NewCatalogController(deps.Sessions, deps.Logger)
	if err != nil {
		return nil, err
	}
	cartCtrl, err := controllers.NewCartController(deps.Sessions, deps.Logger)
	if err != nil {
		return nil, err
	}
	checkoutCtrl, err := controllers.NewCheckoutController(deps.Sessions, deps.Events, deps.Logger)
	if err != nil {
		return nil, err
	}
	ordersCtrl, err := controllers.NewOrdersController(deps.Sessions, deps.Logger)
	if err != nil {
		return nil, err
	}
	health := deps.Health
	if health == nil {
		health = controllers.NewHealthController(deps.Logger)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.RequestID(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.Metrics(deps.Metrics))

	router.Get("/health/live", health.Live)
	router.Get("/health/ready", health.Ready)
	if deps.Gatherer != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/auth/login", authCtrl.Login)

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.Auth(deps.Config.JWT, deps.Sessions, deps.Logger))

			authed.Post("/auth/logout", authCtrl.Logout)

			authed.Get("/catalog/categories", catalogCtrl.ListCategories)
			authed.Get("/catalog/categories/{categoryId}/products", catalogCtrl.ListProducts)

			authed.Get("/cart", cartCtrl.Get)
			authed.Post("/cart/items", cartCtrl.AddItem)
			authed.Post("/cart/items/{productId}/decrement", cartCtrl.DecrementItem)
			authed.Delete("/cart/items/{productId}", cartCtrl.RemoveItem)
			authed.Delete("/cart", cartCtrl.Clear)

			authed.Group(func(idem chi.Router) {
				var store pkgredis.IdempotencyStore
				if deps.Redis != nil {
					store = deps.Redis
				}
				idem.Use(middleware.Idempotency(store, deps.Config.Idempotency.CheckoutTTL, deps.Logger))
				idem.Post("/checkout", checkoutCtrl.Submit)
			})

			authed.Get("/orders", ordersCtrl.List)
			authed.Post("/orders/next", ordersCtrl.NextPage)
		})
	})

	return router, nil
}
