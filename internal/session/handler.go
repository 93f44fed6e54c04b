package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/auth"
)

var (
	errMissingToken = errors.New("missing session token")
	errTokenFormat  = errors.New("invalid token format")
)

// Handler opens sessions.
type Handler struct {
	tokens *auth.TokenIssuer
	logger log.FieldLogger
}

func NewHandler(tokens *auth.TokenIssuer, logger log.FieldLogger) *Handler {
	return &Handler{tokens: tokens, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/sessions", h.open) // POST /api/v1/sessions
}

type openResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	DeviceID  string    `json:"device_id"`
	SessionID string    `json:"session_id"`
}

// open starts a new session. A still-valid token keeps its device id so
// the cart, wishlist and orders carry over.
func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	deviceID := uuid.NewString()
	if header := r.Header.Get("Authorization"); len(header) > len("Bearer ") {
		if claims, err := h.tokens.Parse(header[len("Bearer "):]); err == nil {
			deviceID = claims.DeviceID
		}
	}
	sessionID := uuid.NewString()

	token, expires, err := h.tokens.Issue(deviceID, sessionID)
	if err != nil {
		h.logger.WithError(err).Error("issuing session token")
		respond(w, http.StatusInternalServerError, map[string]string{"error": "could not open session"})
		return
	}
	respond(w, http.StatusCreated, openResponse{Token: token, ExpiresAt: expires, DeviceID: deviceID, SessionID: sessionID})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
