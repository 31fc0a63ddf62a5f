package authapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"
)

func (h *Handler) auditLoginFailed(ctx context.Context, ip net.IP, ua string, email string, reason string) {
	h.insertAudit(ctx, "auth.login.failed", nil, ip, ua, map[string]any{
		"email":  email,
		"reason": reason,
	})
}

func (h *Handler) auditLoginSuccess(ctx context.Context, userID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.login.success", &userID, ip, ua, nil)
}

func (h *Handler) auditRefreshSuccess(ctx context.Context, userID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.refresh.success", &userID, ip, ua, nil)
}

func (h *Handler) auditRefreshRejected(ctx context.Context, ip net.IP, ua string, reason string) {
	h.insertAudit(ctx, "auth.refresh.rejected", nil, ip, ua, map[string]any{
		"reason": reason,
	})
}

func (h *Handler) auditLogout(ctx context.Context, userID string, ip net.IP, ua string) {
	h.insertAudit(ctx, "auth.logout", &userID, ip, ua, nil)
}

// insertAudit is best-effort: audit writes never fail a request, and a nil
// pool (DB-less deployments, tests) disables auditing entirely.
func (h *Handler) insertAudit(ctx context.Context, action string, userID *string, ip net.IP, ua string, meta map[string]any) {
	if h == nil || h.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var ipVal any
	if ip != nil {
		ipVal = ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := h.pool.Exec(ctx, `
		INSERT INTO lingua.auth_audit (
			user_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, now(), $3, $4, $5::jsonb)
	`, userID, action, ipVal, trimOrNil(ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}
