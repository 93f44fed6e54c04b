package order

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// Resolver finds the ledger of the request's session.
type Resolver func(r *http.Request) (Service, bool)

// Handler exposes order history HTTP endpoints.
type Handler struct{ ledgers Resolver }

func NewHandler(ledgers Resolver) *Handler { return &Handler{ledgers: ledgers} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)              // GET    /api/v1/orders
		r.Delete("/", h.clearOrders)          // DELETE /api/v1/orders
		r.Get("/{id}", h.getOrder)            // GET    /api/v1/orders/{id}
		r.Get("/{id}/receipt.pdf", h.receipt) // GET    /api/v1/orders/{id}/receipt.pdf
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledgers(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	respond(w, http.StatusOK, ledger.Orders())
}

func (h *Handler) clearOrders(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledgers(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	ledger.ClearSessionOrders(r.Context())
	respond(w, http.StatusOK, map[string]string{"status": "orders cleared"})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledgers(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	o, err := ledger.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	ledger, ok := h.ledgers(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	o, err := ledger.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := WriteReceipt(&buf, o); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+o.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidMethod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
