package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// Account is what the auth endpoints drive. A session implements it so a
// sign-in also moves the order history to the new identity.
type Account interface {
	SignUp(ctx context.Context, email, password, name string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context)
	Identity() (Identity, bool)
}

// AccountResolver finds the account of the request's session.
type AccountResolver func(r *http.Request) (Account, bool)

// Handler exposes authentication HTTP endpoints.
type Handler struct{ accounts AccountResolver }

func NewHandler(accounts AccountResolver) *Handler { return &Handler{accounts: accounts} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", h.signUp)   // POST /api/v1/auth/signup
		r.Post("/signin", h.signIn)   // POST /api/v1/auth/signin
		r.Post("/signout", h.signOut) // POST /api/v1/auth/signout
		r.Get("/me", h.me)            // GET  /api/v1/auth/me
	})
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *Identity `json:"user"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.accounts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}
	id, err := acc.SignUp(r.Context(), req.Email, req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "Unable to create account. Try again."})
		return
	}
	respond(w, http.StatusCreated, meResponse{Authenticated: true, User: &id})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.accounts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	id, err := acc.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		code, msg := signInFailure(err)
		respond(w, code, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusOK, meResponse{Authenticated: true, User: &id})
}

func signInFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound, "No account found this session. Please sign up."
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	default:
		return http.StatusInternalServerError, "Unable to sign in. Try again."
	}
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.accounts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	acc.SignOut(r.Context())
	respond(w, http.StatusOK, meResponse{Authenticated: false})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.accounts(r)
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "session required"})
		return
	}
	id, signedIn := acc.Identity()
	if !signedIn {
		respond(w, http.StatusOK, meResponse{Authenticated: false})
		return
	}
	respond(w, http.StatusOK, meResponse{Authenticated: true, User: &id})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
