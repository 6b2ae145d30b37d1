package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/quickkart/storefront-gateway/api/middleware"
	"github.com/quickkart/storefront-gateway/internal/session"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
)

type engineProvider interface {
	Engine(ctx context.Context, sessionID string) (*session.Engine, error)
}

// engineFor resolves the caller's per-session engine from the authenticated
// request context.
func engineFor(r *http.Request, provider engineProvider) (*session.Engine, error) {
	engine, err := provider.Engine(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
		return nil, err
	}
	return engine, nil
}
