package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/quickkart/storefront-gateway/pkg/logger"
)

const headerRequestID = "X-Request-Id"

// RequestID propagates the caller's request id, minting one when the header
// is absent. The id is echoed on the response and seeded into the logging
// context so every line for the request carries it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(headerRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
