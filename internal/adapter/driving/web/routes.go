package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers the HTML pages, the preview fragment endpoint and
// the embedded static assets on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Landing)
	mux.HandleFunc("GET /app", h.App)
	mux.HandleFunc("GET /payment", h.Payment)
	mux.HandleFunc("POST /app/preview", h.Preview)
}
