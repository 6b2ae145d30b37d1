package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickkart/storefront-gateway/internal/upstream"
	"github.com/quickkart/storefront-gateway/pkg/config"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
)

type stubLoginAPI struct {
	result *upstream.LoginResult
	err    error
}

func (s *stubLoginAPI) Login(context.Context, string, string) (*upstream.LoginResult, error) {
	return s.result, s.err
}

type stubSessions struct {
	created []string
	revoked []string
	err     error
}

func (s *stubSessions) Create(_ context.Context, token string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, token)
	return "sess-1", nil
}

func (s *stubSessions) Revoke(_ context.Context, sessionID string) error {
	s.revoked = append(s.revoked, sessionID)
	return nil
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront-gateway", ExpirationMinutes: 60}

func TestLoginMintsGatewayToken(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	ctrl, err := NewAuthController(&stubLoginAPI{result: &upstream.LoginResult{
		Token:    "upstream-token",
		UserID:   "u1",
		UserName: "Asha",
	}}, sessions, testJWT, nil)
	if err != nil {
		t.Fatalf("new auth controller: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"asha","password":"pw"}`))
	rec := httptest.NewRecorder()
	ctrl.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	decodeEnvelope(t, rec.Body, &resp)
	if resp.Token == "" {
		t.Fatal("expected a gateway token")
	}
	if resp.User.ID != "u1" || resp.User.Name != "Asha" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if len(sessions.created) != 1 || sessions.created[0] != "upstream-token" {
		t.Fatalf("upstream token not stored, got %v", sessions.created)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	t.Parallel()

	sessions := &stubSessions{}
	ctrl, err := NewAuthController(&stubLoginAPI{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, sessions, testJWT, nil)
	if err != nil {
		t.Fatalf("new auth controller: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"asha","password":"wrong"}`))
	rec := httptest.NewRecorder()
	ctrl.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(sessions.created) != 0 {
		t.Fatal("no session may be created for failed login")
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Parallel()

	ctrl, err := NewAuthController(&stubLoginAPI{}, &stubSessions{}, testJWT, nil)
	if err != nil {
		t.Fatalf("new auth controller: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"asha"}`))
	rec := httptest.NewRecorder()
	ctrl.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
