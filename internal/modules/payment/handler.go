package payment

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the payment options the checkout offers.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Get("/options", h.options)             // GET  /api/v1/payments/options
		r.Post("/validate-card", h.validateCard) // POST /api/v1/payments/validate-card
	})
}

func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.Options())
}

func (h *Handler) validateCard(w http.ResponseWriter, r *http.Request) {
	var card CardDetails
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := ValidateCard(&card); err != nil {
		respond(w, http.StatusUnprocessableEntity, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"valid": true})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
