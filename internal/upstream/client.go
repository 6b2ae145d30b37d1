package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quickkart/storefront-gateway/internal/catalog"
	"github.com/quickkart/storefront-gateway/internal/orders"
	"github.com/quickkart/storefront-gateway/pkg/config"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	"github.com/quickkart/storefront-gateway/pkg/pagination"
)

const responseBodyReadLimit int64 = 4096

// TokenSource supplies the upstream credential for the active session. The
// client attaches it on every authenticated call; it never stores tokens
// itself.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the commerce backend's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the commerce backend client from configuration.
func NewClient(cfg config.UpstreamConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("upstream base url is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// LoginResult carries the upstream credential and identity from a successful
// login.
type LoginResult struct {
	Token    string
	UserID   string
	UserName string
}

// Login exchanges credentials for an upstream token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	body, status, err := c.do(ctx, http.MethodPost, "/login", nil, payload, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if status < 200 || status >= 300 {
		return nil, rejectionError(status, body, "login failed")
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"_id"`
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode login response")
	}
	if resp.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response carried no token")
	}
	return &LoginResult{
		Token:    resp.Token,
		UserID:   resp.User.ID,
		UserName: firstNonEmpty(resp.User.Name, resp.User.Username),
	}, nil
}

// SessionClient binds the client to one session's token source, yielding the
// per-session views the engine consumes.
func (c *Client) SessionClient(tokens TokenSource) *SessionClient {
	return &SessionClient{client: c, tokens: tokens}
}

// SessionClient is the authenticated surface: catalog reads, order creation
// and order history for one session.
type SessionClient struct {
	client *Client
	tokens TokenSource
}

// ListCategories fetches the browsable categories.
func (s *SessionClient) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	body, status, err := s.client.do(ctx, http.MethodGet, "/category", nil, nil, s.tokens)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, readError(status, body, "list categories")
	}

	payloads := []categoryPayload{}
	if err := decodeListOrEnvelope(body, &payloads); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode categories")
	}
	categories := make([]catalog.Category, 0, len(payloads))
	for _, p := range payloads {
		categories = append(categories, p.toCategory())
	}
	return categories, nil
}

// ListProductsByCategory fetches the products for one category.
func (s *SessionClient) ListProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	path := "/product/category/" + url.PathEscape(categoryID)
	body, status, err := s.client.do(ctx, http.MethodGet, path, nil, nil, s.tokens)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if status < 200 || status >= 300 {
		return nil, readError(status, body, "list products")
	}

	payloads := []productPayload{}
	if err := decodeListOrEnvelope(body, &payloads); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode products")
	}
	products := make([]catalog.Product, 0, len(payloads))
	for _, p := range payloads {
		products = append(products, p.toProduct())
	}
	return products, nil
}

// Create submits one order. A non-2xx reply is a rejection whose reason
// surfaces verbatim; transport failures map to a retryable network error.
func (s *SessionClient) Create(ctx context.Context, req orders.Request) (*orders.Record, error) {
	body, status, err := s.client.do(ctx, http.MethodPost, "/order", nil, buildCreatePayload(req), s.tokens)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	if status < 200 || status >= 300 {
		return nil, rejectionError(status, body, "order rejected")
	}

	payload := orderPayload{}
	if err := decodeListOrEnvelope(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode created order")
	}
	record := payload.toRecord()
	return &record, nil
}

// List fetches one page of order history for the date range.
func (s *SessionClient) List(ctx context.Context, from, to time.Time, page pagination.Page) (*orders.Page, error) {
	page = pagination.Normalize(page)
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Number))
	query.Set("limit", strconv.Itoa(page.Size))
	if !from.IsZero() {
		query.Set("from", from.UTC().Format(time.RFC3339))
	}
	if !to.IsZero() {
		query.Set("to", to.UTC().Format(time.RFC3339))
	}

	body, status, err := s.client.do(ctx, http.MethodGet, "/order", query, nil, s.tokens)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	if status < 200 || status >= 300 {
		return nil, readError(status, body, "list orders")
	}

	payload := orderPagePayload{}
	if err := decodeListOrEnvelope(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order page")
	}
	if payload.Page == 0 {
		payload.Page = page.Number
	}
	return payload.toPage(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, tokens TokenSource) ([]byte, int, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if tokens != nil {
		token, err := tokens.Token(ctx)
		if err != nil {
			return nil, 0, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "commerce backend unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read response body")
	}
	return body, resp.StatusCode, nil
}

// decodeListOrEnvelope accepts either a bare JSON value or the backend's
// {status, data} envelope around it.
func decodeListOrEnvelope(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return json.Unmarshal(body, out)
}

func rejectionError(status int, body []byte, fallback string) error {
	return pkgerrors.New(pkgerrors.CodeServerRejected, rejectionReason(status, body, fallback))
}

func readError(status int, body []byte, operation string) error {
	if status >= 500 {
		return pkgerrors.New(pkgerrors.CodeNetwork, fmt.Sprintf("%s: backend returned status %d", operation, status))
	}
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s: %s", operation, rejectionReason(status, body, "unexpected backend reply")))
}

// rejectionReason pulls the human-readable message out of an error reply so
// the caller can surface it verbatim.
func rejectionReason(status int, body []byte, fallback string) string {
	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil {
		if reason := firstNonEmpty(resp.Message, resp.Error); reason != "" {
			return reason
		}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	return fmt.Sprintf("%s (status %d)", fallback, status)
}
