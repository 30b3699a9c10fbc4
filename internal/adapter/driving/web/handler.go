// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/postpilot/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/postpilot/internal/adapter/driving/web/viewmodel"
)

// maxPreviewBytes bounds the form body accepted by Preview.
const maxPreviewBytes = 64 << 10

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	keyID    string
	currency string
	logger   *slog.Logger
}

// NewHandler creates a Handler. keyID is the public payment key handed to
// the checkout widget; an empty keyID disables the buy buttons.
func NewHandler(keyID, currency string, logger *slog.Logger) *Handler {
	return &Handler{
		keyID:    keyID,
		currency: currency,
		logger:   logger,
	}
}

func (h *Handler) page(title string) vm.PageViewModel {
	return vm.PageViewModel{
		Title:    title,
		Plans:    toPlanCards(h.currency),
		Currency: h.currency,
		KeyID:    h.keyID,
		Formats:  formatOptions(),
		Lengths:  lengthOptions(),
	}
}

// Landing renders the marketing page.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	page := h.page("PostPilot")
	h.render(w, r, "landing", templates.Landing(page))
}

// App renders the generator page and issues the CSRF cookie used by the
// preview endpoint.
func (h *Handler) App(w http.ResponseWriter, r *http.Request) {
	page := h.page("PostPilot | Generator")
	token, err := csrfToken(w, r)
	if err != nil {
		h.logger.Error("failed to issue csrf token", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	page.CSRFToken = token
	h.render(w, r, "app", templates.App(page))
}

// Payment renders the checkout page.
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	page := h.page("PostPilot | Pricing")
	h.render(w, r, "payment", templates.Payment(page))
}

// Preview renders the posted content as a sanitized HTML fragment.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreviewBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if !validCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	content := strings.TrimSpace(r.PostFormValue("content"))
	h.render(w, r, "preview", templates.Preview(toPreviewViewModel(content)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
