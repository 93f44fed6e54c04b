package preferences

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Resolver finds the preferences of the request's device.
type Resolver func(r *http.Request) (*Store, bool)

type Handler struct{ prefs Resolver }

func NewHandler(prefs Resolver) *Handler { return &Handler{prefs: prefs} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/preferences", func(r chi.Router) {
		r.Get("/theme", h.getTheme)                 // GET  /api/v1/preferences/theme
		r.Put("/theme", h.setTheme)                 // PUT  /api/v1/preferences/theme
		r.Post("/theme/toggle", h.toggleTheme)      // POST /api/v1/preferences/theme/toggle
		r.Get("/dismissals/{flag}", h.getDismissal) // GET  /api/v1/preferences/dismissals/{flag}
		r.Post("/dismissals/{flag}", h.dismiss)     // POST /api/v1/preferences/dismissals/{flag}
	})
}

type ThemeRequest struct {
	Theme Theme `json:"theme"`
}

type dismissalResponse struct {
	Flag      string `json:"flag"`
	Dismissed bool   `json:"dismissed"`
}

func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prefs(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	respond(w, http.StatusOK, ThemeRequest{Theme: p.Theme()})
}

func (h *Handler) setTheme(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prefs(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := p.SetTheme(r.Context(), req.Theme); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, ThemeRequest{Theme: p.Theme()})
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prefs(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	respond(w, http.StatusOK, ThemeRequest{Theme: p.ToggleTheme(r.Context())})
}

func (h *Handler) getDismissal(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prefs(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	flag := chi.URLParam(r, "flag")
	dismissed, err := p.Dismissed(r.Context(), flag)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, dismissalResponse{Flag: flag, Dismissed: dismissed})
}

func (h *Handler) dismiss(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prefs(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	flag := chi.URLParam(r, "flag")
	if err := p.Dismiss(r.Context(), flag); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, dismissalResponse{Flag: flag, Dismissed: true})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
