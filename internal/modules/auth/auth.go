// Package auth holds the session-scoped identity of a shopper and the
// tokens that bind a client to its session.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("account storage unavailable")
)

const (
	accountKey  = "jerseyx_account"
	identityKey = "jerseyx_user"

	guestPartition  = "jerseyx_orders_guest"
	partitionPrefix = "jerseyx_orders_"
)

// Identity is the signed-in shopper.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// account is the one credential record a session holds.
type account struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Name         string `json:"name"`
}

func (a account) identity() Identity {
	name := a.Name
	if name == "" {
		name = localPart(a.Email)
	}
	if name == "" {
		name = "User"
	}
	return Identity{ID: "local-" + a.Email, Email: a.Email, Name: name}
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// PartitionKey names the order history partition of id; nil is the guest.
func PartitionKey(id *Identity) string {
	if id == nil {
		return guestPartition
	}
	if id.Email != "" {
		return partitionPrefix + id.Email
	}
	if id.ID != "" {
		return partitionPrefix + id.ID
	}
	return guestPartition
}

// Store is the identity state machine of one session: anonymous until a
// sign-up or sign-in succeeds. Both records live in session storage.
type Store struct {
	mu      sync.RWMutex
	current *Identity
	storage storage.Store
	cost    int
	logger  log.FieldLogger
}

// NewStore restores a previously saved identity from s, if any.
func NewStore(ctx context.Context, s storage.Store, cost int, logger log.FieldLogger) *Store {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	st := &Store{storage: s, cost: cost, logger: logger.WithField("store", "identity")}

	var saved Identity
	err := storage.LoadJSON(ctx, s, identityKey, &saved)
	switch {
	case err == nil && saved.Email != "":
		st.current = &saved
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		st.logger.WithError(err).Warn("ignoring unreadable identity record")
	}
	return st
}

// SignUp replaces the session's credential record and signs in. The name
// defaults to the local part of the e-mail address.
func (s *Store) SignUp(ctx context.Context, email, password, name string) (Identity, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), s.cost)
	if err != nil {
		return Identity{}, errors.Wrap(err, "hashing password")
	}
	if name == "" {
		name = localPart(email)
	}
	acc := account{Email: email, PasswordHash: string(hash), Name: name}
	if err := storage.SaveJSON(ctx, s.storage, accountKey, acc); err != nil {
		s.logger.WithError(err).Warn("saving account")
		return Identity{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	return s.authenticate(ctx, acc.identity()), nil
}

// SignIn checks email and password against the session's credential record.
func (s *Store) SignIn(ctx context.Context, email, password string) (Identity, error) {
	var acc account
	err := storage.LoadJSON(ctx, s.storage, accountKey, &acc)
	if errors.Is(err, storage.ErrNotFound) {
		return Identity{}, ErrAccountNotFound
	}
	if err != nil {
		s.logger.WithError(err).Warn("reading account")
		return Identity{}, errors.Wrap(ErrUnavailable, err.Error())
	}

	if acc.Email != email {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), passwordDigest(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return s.authenticate(ctx, acc.identity()), nil
}

// passwordDigest folds any password into 44 bytes, under bcrypt's 72-byte limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// SignOut always leaves the store anonymous.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, identityKey); err != nil {
		s.logger.WithError(err).Warn("removing identity record")
	}
}

func (s *Store) authenticate(ctx context.Context, id Identity) Identity {
	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	if err := storage.SaveJSON(ctx, s.storage, identityKey, id); err != nil {
		s.logger.WithError(err).Warn("saving identity record")
	}
	return id
}

// Current returns the signed-in identity.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// PartitionKey is the order partition of the current identity.
func (s *Store) PartitionKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PartitionKey(s.current)
}
