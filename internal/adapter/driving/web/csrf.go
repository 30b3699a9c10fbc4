package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
)

// Double-submit token: the generator page sets the cookie and renders the
// same value into data-csrf, and app.js echoes it in the header.
const (
	csrfCookieName = "postpilot_csrf"
	csrfHeader     = "X-CSRF-Token"
	csrfMaxAge     = 12 * 60 * 60
)

func csrfToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(csrfCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/app",
		MaxAge:   csrfMaxAge,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token, nil
}

func validCSRF(r *http.Request) bool {
	c, err := r.Cookie(csrfCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	sent := r.Header.Get(csrfHeader)
	return sent != "" && subtle.ConstantTimeCompare([]byte(sent), []byte(c.Value)) == 1
}
