package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/auth"
)

type contextKey struct{}

// FromContext returns the session attached by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// Middleware resolves "Authorization: Bearer <token>" to a session.
type Middleware struct {
	tokens   *auth.TokenIssuer
	sessions *Registry
}

func NewMiddleware(tokens *auth.TokenIssuer, sessions *Registry) *Middleware {
	return &Middleware{tokens: tokens, sessions: sessions}
}

// Required rejects requests without a valid token.
func (m *Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claims(r)
		if err != nil {
			respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		s := m.sessions.Get(r.Context(), claims.DeviceID, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// Optional attaches the session when the token is valid and proceeds
// either way.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := m.claims(r); err == nil {
			s := m.sessions.Get(r.Context(), claims.DeviceID, claims.SessionID)
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) claims(r *http.Request) (auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Claims{}, errMissingToken
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return auth.Claims{}, errTokenFormat
	}
	return m.tokens.Parse(token)
}
