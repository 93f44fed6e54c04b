package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// Pricer quotes a session price for a product id.
type Pricer interface {
	PriceFor(productID string) int
}

// PricerResolver finds the pricer of the request's session, if any.
type PricerResolver func(r *http.Request) (Pricer, bool)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service Service
	prices  PricerResolver
}

func NewHandler(service Service, prices PricerResolver) *Handler {
	return &Handler{service: service, prices: prices}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", h.listProducts)         // GET /api/v1/catalog/products?q=&sport=&team=&max_price=
		r.Get("/products/{id}", h.getProduct)      // GET /api/v1/catalog/products/{id}
		r.Get("/products/{id}/related", h.related) // GET /api/v1/catalog/products/{id}/related
		r.Get("/featured", h.featured)             // GET /api/v1/catalog/featured?limit=6
		r.Get("/trending", h.trending)             // GET /api/v1/catalog/trending?limit=6
		r.Get("/facets", h.facets)                 // GET /api/v1/catalog/facets
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{Query: q.Get("q"), Sport: Sport(q.Get("sport")), Team: q.Get("team")}
	if raw := q.Get("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "invalid max_price"})
			return
		}
		f.MaxPrice = maxPrice
	}

	listing, err := h.service.ListProducts(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if f != (Filter{}) {
		matched := listing.Products[:0]
		for _, p := range listing.Products {
			if f.Match(p) {
				matched = append(matched, p)
			}
		}
		listing.Products = matched
	}
	respond(w, http.StatusOK, listing)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrProductNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	if h.prices != nil {
		if pricer, ok := h.prices(r); ok {
			p.Price = float64(pricer.PriceFor(p.ID))
		}
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) related(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Related(r.Context(), chi.URLParam(r, "id"), limitParam(r))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrProductNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Featured(r.Context(), limitParam(r))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) trending(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Trending(r.Context(), limitParam(r))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) facets(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.Facets(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, f)
}

// limitParam reads ?limit=; zero means the default size.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
