package checkout

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
)

// Resolver finds the checkout of the request's session.
type Resolver func(r *http.Request) (*Orchestrator, bool)

// Handler exposes checkout wizard HTTP endpoints.
type Handler struct {
	checkouts Resolver
	payments  payment.Service
	catalog   catalog.Service
	prices    catalog.PricerResolver
}

func NewHandler(checkouts Resolver, payments payment.Service, products catalog.Service, prices catalog.PricerResolver) *Handler {
	return &Handler{checkouts: checkouts, payments: payments, catalog: products, prices: prices}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Get("/", h.state)           // GET  /api/v1/checkout
		r.Post("/terms", h.terms)     // POST /api/v1/checkout/terms
		r.Post("/details", h.details) // POST /api/v1/checkout/details
		r.Post("/next", h.next)       // POST /api/v1/checkout/next
		r.Post("/back", h.back)       // POST /api/v1/checkout/back
		r.Post("/method", h.method)   // POST /api/v1/checkout/method
		r.Post("/pay", h.pay)         // POST /api/v1/checkout/pay
		r.Post("/buy-now", h.buyNow)  // POST /api/v1/checkout/buy-now
		r.Get("/upi", h.upiIntent)    // GET  /api/v1/checkout/upi
		r.Get("/upi/qr.png", h.upiQR) // GET  /api/v1/checkout/upi/qr.png?size=256
	})
}

type TermsRequest struct {
	Accepted bool `json:"accepted"`
}

type MethodRequest struct {
	Method string `json:"method"`
}

type BuyNowRequest struct {
	ProductID string              `json:"id"`
	Size      string              `json:"size,omitempty"`
	Qty       int                 `json:"qty,omitempty"`
	Product   *catalog.Snapshot   `json:"product,omitempty"`
	Custom    *cart.Customization `json:"custom,omitempty"`
}

type detailsResponse struct {
	State  State       `json:"state"`
	Errors FieldErrors `json:"errors,omitempty"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Orchestrator, bool) {
	o, ok := h.checkouts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
	}
	return o, ok
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, o.State())
}

func (h *Handler) terms(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o.AcceptTerms(req.Accepted)
	respond(w, http.StatusOK, o.State())
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req Details
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	errs := o.SetDetails(req)
	respond(w, http.StatusOK, detailsResponse{State: o.State(), Errors: errs})
}

func (h *Handler) next(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := o.Next(); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, o.State())
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	o.Back()
	respond(w, http.StatusOK, o.State())
}

func (h *Handler) method(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req MethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	m, _ := payment.ParseMethod(req.Method)
	if err := o.SelectMethod(m); err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, o.State())
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req payment.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Method != "" {
		m, ok := payment.ParseMethod(string(req.Method))
		if !ok {
			respond(w, http.StatusBadRequest, map[string]string{"error": payment.ErrUnsupportedMethod.Error()})
			return
		}
		req.Method = m
	}
	conf, err := o.Pay(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, conf)
}

func (h *Handler) buyNow(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	var req BuyNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}
	if req.Qty < 0 || req.Qty > cart.MaxQuantity {
		respond(w, http.StatusBadRequest, map[string]string{"error": "qty must be between 1 and 10"})
		return
	}
	snap, ok := cart.SnapshotFor(r, h.catalog, h.prices, req.ProductID, req.Product)
	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": catalog.ErrProductNotFound.Error()})
		return
	}
	size := req.Size
	if size == "" && len(snap.Sizes) > 0 {
		size = snap.Sizes[0]
	}
	o.BuyNow(r.Context(), req.ProductID, size, req.Qty, snap, req.Custom)
	respond(w, http.StatusOK, o.State())
}

func (h *Handler) upiIntent(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	amount := o.Amount()
	respond(w, http.StatusOK, map[string]interface{}{
		"amount":     amount,
		"intent_url": h.payments.UPI().IntentURL(amount),
	})
}

func (h *Handler) upiQR(w http.ResponseWriter, r *http.Request) {
	o, ok := h.session(w, r)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size > 1024 {
		size = 1024
	}
	png, err := h.payments.UPI().QRCode(o.Amount(), size)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	var perr *payment.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": err.Error(), "fields": verr.Fields})
	case errors.As(err, &perr):
		respond(w, http.StatusUnprocessableEntity, map[string]interface{}{"error": err.Error(), "fields": perr.Fields})
	case errors.Is(err, ErrTermsNotAccepted), errors.Is(err, ErrEmptyCart), errors.Is(err, ErrNoMethod):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrWrongStep):
		respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, payment.ErrUnsupportedMethod):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
