package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenPayload captures the data available when minting a session JWT.
type SessionTokenPayload struct {
	UserID string
	Name   string
	JTI    string
}

// SessionTokenClaims represents the typed JWT issued to storefront clients.
// The registered ID (jti) keys the server-side session state.
type SessionTokenClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionID returns the jti claim, which identifies the gateway session.
func (c *SessionTokenClaims) SessionID() string {
	return c.ID
}
