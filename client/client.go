package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrUnauthorized covers 401 responses: bad credentials, rejected or
	// already-rotated refresh secrets.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound covers 404 responses on refresh and federated login.
	ErrUserNotFound = errors.New("user not found")
)

// TokenPair is the server's response to login, federated login, and refresh.
type TokenPair struct {
	AccessToken  string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"`
	Language     *string  `json:"language"`
	Providers    []string `json:"providers"`
}

// Client talks to the Lingua auth server as a native client: the refresh
// secret travels in the response body, never in a cookie.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the transport, mainly for tests and custom TLS.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a Client for the server at baseURL.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Login exchanges an email/password pair for tokens.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	return c.tokenCall(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// FederatedLogin exchanges an identity-provider authorization code for tokens.
func (c *Client) FederatedLogin(ctx context.Context, code string) (TokenPair, error) {
	return c.tokenCall(ctx, "/auth/federated", map[string]string{
		"code": code,
	})
}

// Refresh rotates the refresh secret and returns a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	return c.tokenCall(ctx, "/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	})
}

// Logout revokes the refresh record. It succeeds even when the access token
// is expired or the secret is already revoked.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	resp, err := c.post(ctx, "/auth/logout", map[string]string{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
	if err != nil {
		return err
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("logout: unexpected status %d", resp.StatusCode)
	}
}

func (c *Client) tokenCall(ctx context.Context, path string, body map[string]string) (TokenPair, error) {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return TokenPair{}, err
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return TokenPair{}, ErrUnauthorized
	case http.StatusNotFound:
		return TokenPair{}, ErrUserNotFound
	default:
		return TokenPair{}, fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return TokenPair{}, fmt.Errorf("%s: decode response: %w", path, err)
	}
	return pair, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]string) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client", "native")

	return c.http.Do(req)
}

// AttachToken sets the Authorization header when a token is present, and is a
// no-op otherwise.
func AttachToken(req *http.Request, accessToken string) {
	if req == nil || accessToken == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
}

func drainClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
