// Package session assembles the per-session stores and binds them to the
// bearer token a client presents.
package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/auth"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/checkout"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/preferences"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/pricing"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/wishlist"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

// Session is everything one shopper's browser session owns.
type Session struct {
	DeviceID  string
	SessionID string

	Auth        *auth.Store
	Cart        *cart.Store
	Wishlist    *wishlist.Store
	Orders      order.Service
	Checkout    *checkout.Orchestrator
	Prices      *pricing.Oracle
	Preferences *preferences.Store

	mu       sync.Mutex
	lastSeen time.Time
}

// SignUp creates the session's account and moves the order history to it.
func (s *Session) SignUp(ctx context.Context, email, password, name string) (auth.Identity, error) {
	id, err := s.Auth.SignUp(ctx, email, password, name)
	if err != nil {
		return auth.Identity{}, err
	}
	s.Orders.SwitchPartition(ctx, s.Auth.PartitionKey())
	return id, nil
}

// SignIn authenticates and loads the identity's order history. A failed
// sign-in leaves the current partition alone.
func (s *Session) SignIn(ctx context.Context, email, password string) (auth.Identity, error) {
	id, err := s.Auth.SignIn(ctx, email, password)
	if err != nil {
		return auth.Identity{}, err
	}
	s.Orders.SwitchPartition(ctx, s.Auth.PartitionKey())
	return id, nil
}

// SignOut returns to the guest order history.
func (s *Session) SignOut(ctx context.Context) {
	s.Auth.SignOut(ctx)
	s.Orders.SwitchPartition(ctx, s.Auth.PartitionKey())
}

func (s *Session) Identity() (auth.Identity, bool) { return s.Auth.Current() }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Factory builds sessions from the shared collaborators.
type Factory struct {
	Durable  storage.DurableStore
	Session  storage.SessionStore
	Catalog  catalog.Service
	Payments payment.Service
	Events   order.EventDispatcher

	Adjustments order.Adjustments
	ETA         checkout.ETAPolicy
	BcryptCost  int
	Logger      log.FieldLogger
}

// Build wires every store of one session. Device-scoped data lives under
// "device:<id>" in the durable store; session-scoped data under
// "session:<id>" in the session store.
func (f *Factory) Build(ctx context.Context, deviceID, sessionID string) *Session {
	logger := f.Logger.WithFields(log.Fields{"device_id": deviceID, "session_id": sessionID})
	durable := storage.Namespace(f.Durable, "device:"+deviceID)
	scoped := storage.Namespace(f.Session, "session:"+sessionID)

	identity := auth.NewStore(ctx, scoped, f.BcryptCost, logger)
	carts := cart.NewStore(ctx, durable, f.Catalog, logger)
	orders := order.NewService(ctx, order.NewStoreRepository(durable), f.Events, logger, identity.PartitionKey())

	return &Session{
		DeviceID:  deviceID,
		SessionID: sessionID,
		Auth:      identity,
		Cart:      carts,
		Wishlist:  wishlist.NewStore(ctx, durable, logger),
		Orders:    orders,
		Checkout: checkout.NewOrchestrator(checkout.Deps{
			Cart:        carts,
			Ledger:      orders,
			Payments:    f.Payments,
			ETA:         f.ETA,
			Adjustments: f.Adjustments,
			Logger:      logger,
		}),
		Prices:      pricing.NewOracle(pricing.SessionSeed(scoped, logger)),
		Preferences: preferences.NewStore(ctx, durable, logger),
	}
}
