package cart

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
)

// Resolver finds the cart of the request's session.
type Resolver func(r *http.Request) (*Store, bool)

// Handler exposes cart HTTP endpoints.
type Handler struct {
	carts   Resolver
	catalog catalog.Service
	prices  catalog.PricerResolver
}

func NewHandler(carts Resolver, products catalog.Service, prices catalog.PricerResolver) *Handler {
	return &Handler{carts: carts, catalog: products, prices: prices}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)                        // GET    /api/v1/cart
		r.Delete("/", h.clearCart)                   // DELETE /api/v1/cart
		r.Post("/items", h.addItem)                  // POST   /api/v1/cart/items
		r.Patch("/items/{id}/{size}", h.updateItem)  // PATCH  /api/v1/cart/items/{id}/{size}
		r.Delete("/items/{id}/{size}", h.removeItem) // DELETE /api/v1/cart/items/{id}/{size}
	})
}

// AddItemRequest adds a line. Product is optional; without it the line is
// snapshotted from the catalog at the session price.
type AddItemRequest struct {
	ProductID string            `json:"id"`
	Size      string            `json:"size"`
	Qty       int               `json:"qty"`
	Product   *catalog.Snapshot `json:"product,omitempty"`
	Custom    *Customization    `json:"custom,omitempty"`
}

type UpdateItemRequest struct {
	Qty int `json:"qty"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	respond(w, http.StatusOK, c.Summary())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	c.Clear(r.Context())
	respond(w, http.StatusOK, c.Summary())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" || req.Size == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "id and size are required"})
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	if req.Qty < 1 || req.Qty > MaxQuantity {
		respond(w, http.StatusBadRequest, map[string]string{"error": "qty must be between 1 and 10"})
		return
	}
	if current := lineQty(c, req.ProductID, req.Size); current+req.Qty > MaxQuantity {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": "quantity limit reached for this size"})
		return
	}

	snap, ok := SnapshotFor(r, h.catalog, h.prices, req.ProductID, req.Product)
	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": catalog.ErrProductNotFound.Error()})
		return
	}
	c.Add(r.Context(), req.ProductID, req.Size, req.Qty, snap, req.Custom)
	respond(w, http.StatusCreated, c.Summary())
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Qty < 1 || req.Qty > MaxQuantity {
		respond(w, http.StatusBadRequest, map[string]string{"error": "qty must be between 1 and 10"})
		return
	}
	c.Update(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "size"), req.Qty)
	respond(w, http.StatusOK, c.Summary())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	c, ok := h.carts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	c.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "size"))
	respond(w, http.StatusOK, c.Summary())
}

func lineQty(c *Store, productID, size string) int {
	for _, l := range c.Items() {
		if l.matches(productID, size) {
			return l.Qty
		}
	}
	return 0
}

// SnapshotFor returns given when set, otherwise a snapshot of the catalog
// product. Either way the price is the session price when one is known;
// a client-sent price is never trusted over it.
func SnapshotFor(r *http.Request, products catalog.Service, prices catalog.PricerResolver, productID string, given *catalog.Snapshot) (*catalog.Snapshot, bool) {
	var snap catalog.Snapshot
	if given != nil {
		snap = given.Clone()
		snap.ID = productID
	} else {
		p, err := products.GetProduct(r.Context(), productID)
		if err != nil {
			return nil, false
		}
		snap = p.Snapshot()
	}
	if prices != nil {
		if pricer, ok := prices(r); ok {
			snap.Price = float64(pricer.PriceFor(productID))
		}
	}
	return &snap, true
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
