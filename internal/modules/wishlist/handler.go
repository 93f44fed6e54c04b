package wishlist

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
)

// Resolver finds the wishlist of the request's session.
type Resolver func(r *http.Request) (*Store, bool)

// Handler exposes wishlist HTTP endpoints.
type Handler struct {
	wishlists Resolver
	catalog   catalog.Service
}

func NewHandler(wishlists Resolver, products catalog.Service) *Handler {
	return &Handler{wishlists: wishlists, catalog: products}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Get("/", h.list)          // GET    /api/v1/wishlist
		r.Delete("/", h.clear)      // DELETE /api/v1/wishlist
		r.Post("/toggle", h.toggle) // POST   /api/v1/wishlist/toggle
		r.Get("/{id}", h.contains)  // GET    /api/v1/wishlist/{id}
		r.Delete("/{id}", h.remove) // DELETE /api/v1/wishlist/{id}
	})
}

// ToggleRequest names a product; Product may carry the display snapshot.
type ToggleRequest struct {
	ProductID string            `json:"id"`
	Product   *catalog.Snapshot `json:"product,omitempty"`
}

type listResponse struct {
	Items []catalog.Snapshot `json:"items"`
	Count int                `json:"count"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.wishlists(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	respond(w, http.StatusOK, listResponse{Items: wl.Items(), Count: wl.Count()})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.wishlists(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	wl.Clear(r.Context())
	respond(w, http.StatusOK, listResponse{Items: wl.Items(), Count: wl.Count()})
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.wishlists(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var snap catalog.Snapshot
	switch {
	case req.Product != nil:
		snap = *req.Product
		if snap.ID == "" {
			snap.ID = req.ProductID
		}
	case req.ProductID != "":
		p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
		if err != nil {
			respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		snap = p.Snapshot()
	default:
		respond(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	in := wl.Toggle(r.Context(), snap)
	respond(w, http.StatusOK, map[string]interface{}{"id": snap.ID, "wishlisted": in, "count": wl.Count()})
}

func (h *Handler) contains(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.wishlists(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	id := chi.URLParam(r, "id")
	respond(w, http.StatusOK, map[string]interface{}{"id": id, "wishlisted": wl.Contains(id)})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	wl, ok := h.wishlists(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	wl.Remove(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, listResponse{Items: wl.Items(), Count: wl.Count()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
