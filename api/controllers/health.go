package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/quickkart/storefront-gateway/api/responses"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	"github.com/quickkart/storefront-gateway/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type dependencyPinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	logg  *logger.Logger
	deps  map[string]dependencyPinger
	start time.Time
}

func NewHealthController(logg *logger.Logger) *HealthController {
	return &HealthController{
		logg:  logg,
		deps:  make(map[string]dependencyPinger),
		start: time.Now(),
	}
}

// Register adds a named dependency to the readiness check. Nil pingers are
// ignored so optional dependencies can be wired unconditionally.
func (c *HealthController) Register(name string, dep dependencyPinger) {
	if dep != nil {
		c.deps[name] = dep
	}
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(c.start).Round(time.Second).String(),
	})
}

func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	statuses := make(map[string]string, len(c.deps))
	healthy := true
	for name, dep := range c.deps {
		if err := dep.Ping(ctx); err != nil {
			statuses[name] = err.Error()
			healthy = false
			continue
		}
		statuses[name] = "ok"
	}

	if !healthy {
		responses.WriteError(r.Context(), c.logg, w,
			pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(statuses))
		return
	}
	responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
}
