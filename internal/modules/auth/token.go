package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims binds a token to a device partition (subject) and a session
// partition (token id).
type Claims struct {
	DeviceID  string
	SessionID string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(deviceID, sessionID string) (string, time.Time, error) {
	expirationTime := t.now().Add(t.ttl)
	claims := &jwt.StandardClaims{
		Subject:   deviceID,
		Id:        sessionID,
		IssuedAt:  t.now().Unix(),
		ExpiresAt: expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.key)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signing session token")
	}
	return tokenString, expirationTime, nil
}

func (t *TokenIssuer) Parse(tokenString string) (Claims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Id == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{
		DeviceID:  claims.Subject,
		SessionID: claims.Id,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}
