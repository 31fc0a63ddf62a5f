package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lingua/cmd/identity"
	"lingua/internal/auth/session"

	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	users map[string]identity.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (identity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (identity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return identity.User{}, identity.ErrNotFound
}

type fakeVerifier struct {
	email    string
	password string
	user     identity.User
}

func (f fakeVerifier) Verify(_ context.Context, email, password string) (identity.User, error) {
	if email == f.email && password == f.password {
		return f.user, nil
	}
	return identity.User{}, ErrInvalidCredentials
}

type fakeExchanger struct {
	code  string
	email string
}

func (f fakeExchanger) Exchange(_ context.Context, code string) (string, error) {
	if code == f.code {
		return f.email, nil
	}
	return "", ErrExchangeRejected
}

func newTestHandler(t *testing.T) (*Handler, *session.MemoryStore, *fakeUsers) {
	t.Helper()

	lang := "es"
	user := identity.User{
		ID:        "user-1",
		Email:     "ana@example.com",
		Language:  &lang,
		Providers: []string{"password"},
	}
	users := &fakeUsers{users: map[string]identity.User{user.ID: user}}

	sessCfg := session.DefaultConfig()
	sessCfg.JWTSecret = strings.Repeat("k", 32)
	sessCfg.BcryptCost = bcrypt.MinCost

	signer, err := session.NewSigner(sessCfg)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	store := session.NewMemoryStore()
	svc := session.NewService(sessCfg, store, users, signer)

	cfg := Config{
		MaxBodyBytes:       1 << 20,
		NativeClientHeader: "X-Client",
		NativeClientValue:  "native",
		RefreshCookieName:  "refreshToken",
		CookiePath:         "/",
		CookieSecure:       true,
		CookieSameSite:     http.SameSiteStrictMode,
	}

	h, err := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, svc, users,
		WithCredentialVerifier(fakeVerifier{email: "ana@example.com", password: "correct-horse", user: user}),
		WithCodeExchanger(fakeExchanger{code: "good-code", email: "ana@example.com"}),
	)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h, store, users
}

func postJSON(t *testing.T, h *Handler, path string, body any, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeTokenResponse(t *testing.T, rr *httptest.ResponseRecorder) tokenResponse {
	t.Helper()
	var resp tokenResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func refreshCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	return nil
}

func TestLoginNativeDeliversSecretInBody(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if refreshCookie(t, rr) != nil {
		t.Fatalf("native login must not set a refresh cookie")
	}

	resp := decodeTokenResponse(t, rr)
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair in body, got %+v", resp)
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expiresIn = %d, want 3600", resp.ExpiresIn)
	}
	if resp.Language == nil || *resp.Language != "es" {
		t.Fatalf("language not carried through: %+v", resp.Language)
	}
}

func TestLoginWebDeliversSecretAsCookie(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	c := refreshCookie(t, rr)
	if c == nil || c.Value == "" {
		t.Fatalf("expected refresh cookie for web login")
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie attributes wrong: %+v", c)
	}

	resp := decodeTokenResponse(t, rr)
	if resp.RefreshToken != "" {
		t.Fatalf("web login must not echo the secret in the body")
	}
	if resp.Token == "" {
		t.Fatalf("expected access token in body")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "wrong"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestLoginRetiresPriorSessionFromCookie(t *testing.T) {
	h, store, _ := newTestHandler(t)

	first := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, nil)
	c := refreshCookie(t, first)
	if c == nil {
		t.Fatalf("expected cookie from first login")
	}

	second := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: c.Value})
	})
	if second.Code != http.StatusOK {
		t.Fatalf("second login status = %d", second.Code)
	}

	// The first session's record is revoked, the second's is live.
	if got := store.Len(); got != 2 {
		t.Fatalf("store records = %d, want 2", got)
	}
	rr := postJSON(t, h, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: c.Value})
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("refresh with retired secret = %d, want 401", rr.Code)
	}
}

func TestFederatedLogin(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/federated", federatedRequest{Code: "good-code"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decodeTokenResponse(t, rr)
	if resp.Token == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", resp)
	}
}

func TestFederatedLoginUnknownUser(t *testing.T) {
	h, _, users := newTestHandler(t)
	delete(users.users, "user-1")

	rr := postJSON(t, h, "/auth/federated", federatedRequest{Code: "good-code"}, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestFederatedLoginBadCode(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/federated", federatedRequest{Code: "bad-code"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	h, _, _ := newTestHandler(t)

	login := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	secret := decodeTokenResponse(t, login).RefreshToken

	first := postJSON(t, h, "/auth/refresh", refreshRequest{RefreshToken: secret}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first refresh = %d, body = %s", first.Code, first.Body.String())
	}
	next := decodeTokenResponse(t, first).RefreshToken
	if next == "" || next == secret {
		t.Fatalf("expected a fresh secret from rotation")
	}

	reuse := postJSON(t, h, "/auth/refresh", refreshRequest{RefreshToken: secret}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	if reuse.Code != http.StatusUnauthorized {
		t.Fatalf("reused secret = %d, want 401", reuse.Code)
	}

	again := postJSON(t, h, "/auth/refresh", refreshRequest{RefreshToken: next}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	if again.Code != http.StatusOK {
		t.Fatalf("rotated secret should still work, got %d", again.Code)
	}
}

func TestRefreshWebUsesCookie(t *testing.T) {
	h, _, _ := newTestHandler(t)

	login := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, nil)
	c := refreshCookie(t, login)
	if c == nil {
		t.Fatalf("expected cookie from login")
	}

	rr := postJSON(t, h, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: c.Value})
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh via cookie = %d, body = %s", rr.Code, rr.Body.String())
	}

	next := refreshCookie(t, rr)
	if next == nil || next.Value == "" || next.Value == c.Value {
		t.Fatalf("expected a rotated cookie secret")
	}
	if decodeTokenResponse(t, rr).RefreshToken != "" {
		t.Fatalf("web refresh must not echo the secret in the body")
	}
}

func TestRefreshMissingSecret(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/refresh", nil, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRefreshUserGone(t *testing.T) {
	h, _, users := newTestHandler(t)

	login := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	secret := decodeTokenResponse(t, login).RefreshToken

	delete(users.users, "user-1")
	rr := postJSON(t, h, "/auth/refresh", refreshRequest{RefreshToken: secret}, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	h, _, _ := newTestHandler(t)

	login := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	pair := decodeTokenResponse(t, login)

	rr := postJSON(t, h, "/auth/logout", logoutRequest{AccessToken: pair.Token, RefreshToken: pair.RefreshToken}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp logoutResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil || !resp.Success {
		t.Fatalf("expected success acknowledgement, got %+v err=%v", resp, err)
	}
	c := refreshCookie(t, rr)
	if c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected cleared refresh cookie")
	}

	reuse := postJSON(t, h, "/auth/refresh", refreshRequest{RefreshToken: pair.RefreshToken}, nil)
	if reuse.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout = %d, want 401", reuse.Code)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	h, _, _ := newTestHandler(t)

	login := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	pair := decodeTokenResponse(t, login)

	for i := 0; i < 2; i++ {
		rr := postJSON(t, h, "/auth/logout", logoutRequest{AccessToken: pair.Token, RefreshToken: pair.RefreshToken}, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("logout #%d = %d", i+1, rr.Code)
		}
	}
}

func TestLogoutRejectsGarbageAccessToken(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/logout", logoutRequest{AccessToken: "not-a-jwt", RefreshToken: "whatever"}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestLogoutRequiresBothTokens(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postJSON(t, h, "/auth/logout", logoutRequest{RefreshToken: "secret"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestMe(t *testing.T) {
	h, _, _ := newTestHandler(t)

	login := postJSON(t, h, "/auth/login", loginRequest{Email: "ana@example.com", Password: "correct-horse"}, func(r *http.Request) {
		r.Header.Set("X-Client", "native")
	})
	pair := decodeTokenResponse(t, login)

	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Token)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("me = %d, body = %s", rr.Code, rr.Body.String())
	}

	var me meResponse
	if err := json.NewDecoder(rr.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != "user-1" || me.Email != "ana@example.com" {
		t.Fatalf("unexpected me payload: %+v", me)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("me without token = %d, want 401", rr.Code)
	}
}
