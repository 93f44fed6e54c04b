package chat

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RelayLimit forwards at most this many trailing turns to the backend.
const RelayLimit = 10

// Handler serves the widget endpoint and the relay endpoint. A nil
// generator leaves the relay misconfigured, which it reports as 500.
type Handler struct {
	bridge    *Bridge
	generator Backend
	limiter   *ClientLimiter
	logger    log.FieldLogger
}

func NewHandler(bridge *Bridge, generator Backend, limiter *ClientLimiter, logger log.FieldLogger) *Handler {
	return &Handler{bridge: bridge, generator: generator, limiter: limiter, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/chat", h.relay) // POST /api/chat
	r.Post("/api/v1/chat", h.send)     // POST /api/v1/chat
}

type SendRequest struct {
	Messages []Message `json:"messages"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	reply, err := h.bridge.Send(r.Context(), req.Messages)
	if errors.Is(err, ErrEmptyMessage) {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, reply)
}

func (h *Handler) relay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}
	if h.generator == nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "Server misconfigured: GEMINI_API_KEY missing"})
		return
	}
	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		respond(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		respond(w, http.StatusBadRequest, map[string]string{"error": "messages array required"})
		return
	}

	reply, err := h.generator.Generate(r.Context(), lastN(req.Messages, RelayLimit))
	switch {
	case err == nil:
		respond(w, http.StatusOK, map[string]string{"reply": reply})
	case errors.Is(err, ErrRateLimited):
		respond(w, http.StatusTooManyRequests, map[string]string{"error": "Gemini rate limit reached"})
	default:
		h.logger.WithError(err).Error("gemini chat error")
		respond(w, http.StatusInternalServerError, map[string]string{"error": "Gemini request failed"})
	}
}

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	rate  rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewClientLimiter(perSecond float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		rate:     rate.Limit(perSecond),
		burst:    burst,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

func (l *ClientLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.visitors[client]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[client] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Sweep forgets clients idle for longer than the limiter's TTL.
func (l *ClientLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-l.ttl)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
