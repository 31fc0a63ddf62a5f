package authapi

import (
	"net/http"
	"strings"
	"time"
)

// isNativeClient reports whether the request is flagged as coming from a
// platform without a trusted shared cookie jar. For those, the refresh
// secret travels in-band; everyone else gets a cookie.
func (h *Handler) isNativeClient(r *http.Request) bool {
	if h == nil || r == nil {
		return false
	}
	v := strings.TrimSpace(r.Header.Get(h.cfg.NativeClientHeader))
	return strings.EqualFold(v, h.cfg.NativeClientValue)
}

// setRefreshCookie delivers the refresh secret out-of-band for browsers:
// HttpOnly keeps it away from page script, SameSite=Strict keeps it off
// cross-site requests.
func (h *Handler) setRefreshCookie(w http.ResponseWriter, secret string, ttl time.Duration) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.RefreshCookieName,
		Value:    secret,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.RefreshCookieName,
		Value:    "",
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	})
}

func (h *Handler) refreshSecretFromCookie(r *http.Request) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(h.cfg.RefreshCookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return "", false
	}
	return v, true
}

// deliver packages an issued pair per platform and writes the response.
func (h *Handler) deliver(w http.ResponseWriter, resp tokenResponse, refreshSecret string, native bool) {
	if native {
		resp.RefreshToken = refreshSecret
	} else {
		h.setRefreshCookie(w, refreshSecret, h.sessions.RefreshTTL())
	}
	writeJSON(w, http.StatusOK, resp)
}
