package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lingua/cmd/identity"
	"lingua/internal/auth/session"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler wires the HTTP auth endpoints to the session service.
type Handler struct {
	log *slog.Logger
	cfg Config

	sessions *session.Service
	users    identity.Store

	// pool is used only for audit inserts; nil disables auditing.
	pool *pgxpool.Pool

	verifier  CredentialVerifier
	exchanger CodeExchanger
	metrics   *Metrics
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithCredentialVerifier overrides the fail-closed default verifier.
func WithCredentialVerifier(v CredentialVerifier) HandlerOption {
	return func(h *Handler) {
		if h == nil || v == nil {
			return
		}
		h.verifier = v
	}
}

// WithCodeExchanger overrides the fail-closed default exchanger.
func WithCodeExchanger(e CodeExchanger) HandlerOption {
	return func(h *Handler) {
		if h == nil || e == nil {
			return
		}
		h.exchanger = e
	}
}

// WithMetrics attaches auth outcome counters.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		if h == nil {
			return
		}
		h.metrics = m
	}
}

// WithAuditPool enables audit-log inserts through the given pool.
func WithAuditPool(pool *pgxpool.Pool) HandlerOption {
	return func(h *Handler) {
		if h == nil {
			return
		}
		h.pool = pool
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, users identity.Store, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if sessions == nil {
		return nil, errors.New("auth: nil session service")
	}
	if users == nil {
		return nil, errors.New("auth: nil identity store")
	}

	h := &Handler{
		log:       log,
		cfg:       cfg,
		sessions:  sessions,
		users:     users,
		verifier:  DenyAllVerifier{},
		exchanger: DenyAllExchanger{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/federated", h.handleFederated)
	mux.HandleFunc("/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/me", h.handleMe)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := identity.NormalizeEmail(req.Email)
	password := req.Password
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "missing_credential", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, false)
	ua := strings.TrimSpace(r.UserAgent())

	user, err := h.verifier.Verify(ctx, email, password)
	if err != nil {
		h.metrics.login("rejected")
		h.auditLoginFailed(ctx, ip, ua, email, "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	// A prior secret, when present, gets retired as part of issuance so a
	// re-login does not leave an orphaned live session behind.
	prior := strings.TrimSpace(req.RefreshToken)
	if prior == "" {
		prior, _ = h.refreshSecretFromCookie(r)
	}

	issued, err := h.sessions.Issue(ctx, now, user, prior)
	if err != nil {
		h.metrics.login("error")
		h.log.Error("auth.login.issue.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.metrics.login("ok")
	h.auditLoginSuccess(ctx, user.ID, ip, ua)
	h.deliver(w, tokenResponse{
		Token:     issued.AccessToken,
		ExpiresIn: issued.ExpiresIn,
		Language:  user.Language,
		Providers: user.Providers,
	}, issued.RefreshSecret, h.isNativeClient(r))
}

func (h *Handler) handleFederated(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req federatedRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing_credential", "code is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, false)
	ua := strings.TrimSpace(r.UserAgent())

	email, err := h.exchanger.Exchange(ctx, code)
	if err != nil {
		h.metrics.login("rejected")
		h.auditLoginFailed(ctx, ip, ua, "", "code_rejected")
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "authorization code rejected")
		return
	}

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			h.metrics.login("rejected")
			h.auditLoginFailed(ctx, ip, ua, email, "not_found")
			writeError(w, http.StatusNotFound, "user_not_found", "no account for this identity")
			return
		}
		h.metrics.login("error")
		h.log.Error("auth.federated.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	prior, _ := h.refreshSecretFromCookie(r)
	issued, err := h.sessions.Issue(ctx, now, user, prior)
	if err != nil {
		h.metrics.login("error")
		h.log.Error("auth.federated.issue.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.metrics.login("ok")
	h.auditLoginSuccess(ctx, user.ID, ip, ua)
	h.deliver(w, tokenResponse{
		Token:     issued.AccessToken,
		ExpiresIn: issued.ExpiresIn,
		Language:  user.Language,
		Providers: user.Providers,
	}, issued.RefreshSecret, h.isNativeClient(r))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
	}
	presented := strings.TrimSpace(req.RefreshToken)
	if presented == "" {
		presented, _ = h.refreshSecretFromCookie(r)
	}
	if presented == "" {
		h.metrics.refresh("missing")
		writeError(w, http.StatusBadRequest, "missing_credential", "refresh token is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, false)
	ua := strings.TrimSpace(r.UserAgent())

	user, issued, err := h.sessions.Rotate(ctx, now, presented)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrMissingSecret):
			h.metrics.refresh("missing")
			writeError(w, http.StatusBadRequest, "missing_credential", "refresh token is required")
		case errors.Is(err, session.ErrRefreshTokenInvalid):
			h.metrics.refresh("rejected")
			h.auditRefreshRejected(ctx, ip, ua, "invalid_or_expired")
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "invalid or expired refresh token")
		case errors.Is(err, session.ErrUserNotFound):
			h.metrics.refresh("rejected")
			h.auditRefreshRejected(ctx, ip, ua, "user_not_found")
			writeError(w, http.StatusNotFound, "user_not_found", "user no longer exists")
		default:
			h.metrics.refresh("error")
			h.log.Error("auth.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.metrics.refresh("ok")
	h.auditRefreshSuccess(ctx, user.ID, ip, ua)
	h.deliver(w, tokenResponse{
		Token:     issued.AccessToken,
		ExpiresIn: issued.ExpiresIn,
		Language:  user.Language,
		Providers: user.Providers,
	}, issued.RefreshSecret, h.isNativeClient(r))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req logoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
	}
	accessToken := strings.TrimSpace(req.AccessToken)
	if accessToken == "" {
		accessToken = bearerToken(r)
	}
	refreshSecret := strings.TrimSpace(req.RefreshToken)
	if refreshSecret == "" {
		refreshSecret, _ = h.refreshSecretFromCookie(r)
	}
	if accessToken == "" || refreshSecret == "" {
		h.metrics.logout("missing")
		writeError(w, http.StatusBadRequest, "missing_credential", "access token and refresh token are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	if err := h.sessions.RevokeOnLogout(ctx, now, accessToken, refreshSecret); err != nil {
		if errors.Is(err, session.ErrAccessTokenMalformed) {
			h.metrics.logout("rejected")
			writeError(w, http.StatusUnauthorized, "malformed_access_token", "access token could not be decoded")
			return
		}
		h.metrics.logout("error")
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if claims, err := h.sessions.Signer().VerifyAllowExpired(accessToken); err == nil {
		h.auditLogout(ctx, claims.UserID, clientIP(r, false), strings.TrimSpace(r.UserAgent()))
	}

	h.metrics.logout("ok")
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, logoutResponse{Success: true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusUnauthorized, "user_not_found", "user not found")
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:        u.ID,
		Email:     u.Email,
		Language:  u.Language,
		Providers: u.Providers,
	})
}

// ---- helpers ----

func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (session.AccessClaims, bool) {
	tok := bearerToken(r)
	if tok == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return session.AccessClaims{}, false
	}
	claims, err := h.sessions.Signer().Verify(tok)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return session.AccessClaims{}, false
	}
	return claims, true
}
