package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quickkart/storefront-gateway/api/middleware"
	"github.com/quickkart/storefront-gateway/api/responses"
	"github.com/quickkart/storefront-gateway/api/validators"
	"github.com/quickkart/storefront-gateway/internal/upstream"
	pkgAuth "github.com/quickkart/storefront-gateway/pkg/auth"
	"github.com/quickkart/storefront-gateway/pkg/config"
	"github.com/quickkart/storefront-gateway/pkg/logger"
)

type loginAPI interface {
	Login(ctx context.Context, username, password string) (*upstream.LoginResult, error)
}

type sessionOpener interface {
	Create(ctx context.Context, upstreamToken string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// AuthController exchanges storefront credentials for a gateway session token.
type AuthController struct {
	api      loginAPI
	sessions sessionOpener
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

func NewAuthController(api loginAPI, sessions sessionOpener, jwtCfg config.JWTConfig, logg *logger.Logger) (*AuthController, error) {
	if api == nil {
		return nil, fmt.Errorf("login api is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &AuthController{api: api, sessions: sessions, jwtCfg: jwtCfg, logg: logg}, nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Login authenticates against the commerce backend, opens a session for the
// upstream token and mints the gateway JWT that references it.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.api.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	sessionID, err := c.sessions.Create(r.Context(), result.Token)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	token, err := pkgAuth.MintSessionToken(c.jwtCfg, time.Now(), pkgAuth.SessionTokenPayload{
		UserID: result.UserID,
		Name:   result.UserName,
		JTI:    sessionID,
	})
	if err != nil {
		_ = c.sessions.Revoke(r.Context(), sessionID)
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, loginResponse{
		Token: token,
		User:  loginUser{ID: result.UserID, Name: result.UserName},
	})
}

// Logout revokes the caller's session. The upstream token is dropped, so the
// JWT stops working immediately even before it expires.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if err := c.sessions.Revoke(r.Context(), sessionID); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "logged out"})
}
