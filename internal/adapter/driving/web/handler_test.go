package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMux(keyID string) *http.ServeMux {
	h := NewHandler(keyID, "INR", slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)
	return mux
}

func get(t *testing.T, mux http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLanding(t *testing.T) {
	rec := get(t, setupMux("rzp_key"), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>PostPilot</title>")
	assert.Contains(t, body, "₹499")
	assert.Contains(t, body, "3 posts")
	assert.Contains(t, body, "50 posts")
}

func TestUnknownPathIsNotFound(t *testing.T) {
	rec := get(t, setupMux("rzp_key"), "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_SetsCSRFCookie(t *testing.T) {
	rec := get(t, setupMux("rzp_key"), "/app")

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, csrfCookieName, cookies[0].Name)
	assert.Contains(t, rec.Body.String(), `data-csrf="`+cookies[0].Value+`"`)
	assert.Contains(t, rec.Body.String(), `<option value="story" selected>`)
	assert.Contains(t, rec.Body.String(), `<option value="medium" selected>`)
}

func TestPayment(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		body := get(t, setupMux("rzp_key"), "/payment").Body.String()
		assert.Contains(t, body, `data-key="rzp_key"`)
		assert.Contains(t, body, `data-plan="starter" data-amount="499"`)
		assert.Contains(t, body, `data-plan="unlimited" data-amount="999"`)
		assert.NotContains(t, body, "not configured")
	})

	t.Run("unconfigured", func(t *testing.T) {
		body := get(t, setupMux(""), "/payment").Body.String()
		assert.Contains(t, body, "Payments are not configured")
		assert.NotContains(t, body, `class="button primary buy"`)
	})
}

func TestStaticAssets(t *testing.T) {
	mux := setupMux("")
	for _, path := range []string{"/static/app.css", "/static/app.js", "/static/payment.js"} {
		rec := get(t, mux, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func previewRequest(content, cookie, header string) *http.Request {
	form := url.Values{"content": {content}}
	req := httptest.NewRequest(http.MethodPost, "/app/preview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: cookie})
	}
	if header != "" {
		req.Header.Set(csrfHeader, header)
	}
	return req
}

func TestPreview(t *testing.T) {
	mux := setupMux("")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, previewRequest("Hook line\nsecond line <script>x()</script>\n\n#growth", "tok", "tok"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<div class="post">`)
	assert.Contains(t, body, `<span class="hashtag">#growth</span>`)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "characters")
}

func TestPreview_CSRF(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
	}{
		{name: "missing cookie", header: "tok"},
		{name: "missing token", cookie: "tok"},
		{name: "mismatch", cookie: "tok", header: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			setupMux("").ServeHTTP(rec, previewRequest("hello", tt.cookie, tt.header))
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}
