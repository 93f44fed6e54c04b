package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/auth"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/checkout"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

func setupFactory(t *testing.T) (*Factory, *storage.Memory, *storage.Memory) {
	t.Helper()
	durable := storage.NewMemory()
	scoped := storage.NewMemory()
	upi := payment.UPIConfig{PayeeVPA: "jerseyx@upi", PayeeName: "JerseyX"}
	return &Factory{
		Durable:    durable,
		Session:    scoped,
		Catalog:    catalog.NewService(nil, logging.Discard()),
		Payments:   payment.NewService(payment.NewRegistry(upi), upi),
		BcryptCost: bcrypt.MinCost,
		Logger:     logging.Discard(),
	}, durable, scoped
}

func checkoutDetails() checkout.Details {
	return checkout.Details{Name: "Asha", Email: "asha@example.com", Address: "12 MG Road", PostalCode: "560001"}
}

func placeOrder(t *testing.T, s *Session) order.Order {
	t.Helper()
	ctx := context.Background()
	p, ok := catalog.StaticProduct("FB-NY-01")
	require.True(t, ok)
	snap := p.Snapshot()
	s.Cart.Add(ctx, p.ID, "M", 1, &snap, nil)
	o, err := s.Orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		Items:  s.Cart.Detailed(),
		Method: payment.MethodUPI,
	})
	require.NoError(t, err)
	return o
}

func TestSession_OrderHistoryFollowsIdentity(t *testing.T) {
	f, _, _ := setupFactory(t)
	ctx := context.Background()
	s := f.Build(ctx, "dev-1", "sess-1")

	_, err := s.SignUp(ctx, "a@x.com", "secret1", "")
	require.NoError(t, err)
	placed := placeOrder(t, s)
	require.Len(t, s.Orders.Orders(), 1)

	_, err = s.SignUp(ctx, "b@x.com", "secret2", "")
	require.NoError(t, err)
	assert.Empty(t, s.Orders.Orders())

	s.SignOut(ctx)
	assert.Equal(t, "jerseyx_orders_guest", s.Orders.Partition())

	// the session holds one credential record, so A signs up again
	_, err = s.SignUp(ctx, "a@x.com", "secret1", "")
	require.NoError(t, err)
	orders := s.Orders.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)
}

func TestSession_FailedSignInKeepsPartition(t *testing.T) {
	f, _, _ := setupFactory(t)
	ctx := context.Background()
	s := f.Build(ctx, "dev-1", "sess-1")

	_, err := s.SignIn(ctx, "a@x.com", "secret1")
	assert.True(t, errors.Is(err, auth.ErrAccountNotFound))
	assert.Equal(t, "jerseyx_orders_guest", s.Orders.Partition())

	_, err = s.SignUp(ctx, "a@x.com", "secret1", "")
	require.NoError(t, err)
	s.SignOut(ctx)

	_, err = s.SignIn(ctx, "a@x.com", "wrong")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
	assert.Equal(t, "jerseyx_orders_guest", s.Orders.Partition())

	id, err := s.SignIn(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a", id.Name)
	assert.Equal(t, "jerseyx_orders_a@x.com", s.Orders.Partition())
}

func TestFactory_DeviceDataOutlivesSession(t *testing.T) {
	f, _, _ := setupFactory(t)
	ctx := context.Background()

	first := f.Build(ctx, "dev-1", "sess-1")
	_, err := first.SignUp(ctx, "a@x.com", "secret1", "")
	require.NoError(t, err)
	first.Cart.Add(ctx, "CR-IND-07", "L", 2, nil, nil)

	restored := f.Build(ctx, "dev-1", "sess-1")
	_, ok := restored.Identity()
	assert.True(t, ok, "same session restores the identity")

	next := f.Build(ctx, "dev-1", "sess-2")
	_, ok = next.Identity()
	assert.False(t, ok, "a new session starts anonymous")
	assert.Equal(t, 2, next.Cart.Count())

	other := f.Build(ctx, "dev-2", "sess-3")
	assert.Zero(t, other.Cart.Count())
}

func TestFactory_PriceStableWithinSession(t *testing.T) {
	f, _, _ := setupFactory(t)
	ctx := context.Background()

	a := f.Build(ctx, "dev-1", "sess-1").Prices.PriceFor("GEN-1")
	b := f.Build(ctx, "dev-1", "sess-1").Prices.PriceFor("GEN-1")
	assert.Equal(t, a, b)
}

func TestSession_CheckoutClearsSharedCart(t *testing.T) {
	f, _, _ := setupFactory(t)
	ctx := context.Background()
	s := f.Build(ctx, "dev-1", "sess-1")

	p, _ := catalog.StaticProduct("FB-NY-01")
	snap := p.Snapshot()
	s.Cart.Add(ctx, p.ID, "M", 2, &snap, nil)

	s.Checkout.AcceptTerms(true)
	require.NoError(t, s.Checkout.Next())
	s.Checkout.SetDetails(checkoutDetails())
	require.NoError(t, s.Checkout.Next())
	require.NoError(t, s.Checkout.Next())

	conf, err := s.Checkout.Pay(ctx, payment.Request{Method: payment.MethodUPI})
	require.NoError(t, err)
	assert.Equal(t, 3998.0, conf.Total)
	assert.Zero(t, s.Cart.Count())
	require.Len(t, s.Orders.Orders(), 1)
}

func TestRegistry_ReusesAndEvicts(t *testing.T) {
	f, _, _ := setupFactory(t)
	reg := NewRegistry(f, time.Minute, logging.Discard())
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	ctx := context.Background()
	a := reg.Get(ctx, "dev-1", "sess-1")
	assert.Same(t, a, reg.Get(ctx, "dev-1", "sess-1"))
	reg.Get(ctx, "dev-2", "sess-2")
	assert.Equal(t, 2, reg.Len())

	now = now.Add(30 * time.Second)
	reg.Get(ctx, "dev-2", "sess-2")
	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
	assert.NotSame(t, a, reg.Get(ctx, "dev-1", "sess-1"))
}

// gatedStore holds reads of keys under prefix until gate is closed.
type gatedStore struct {
	*storage.Memory
	prefix  string
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (g *gatedStore) Get(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, g.prefix) {
		g.once.Do(func() { close(g.entered) })
		<-g.gate
	}
	return g.Memory.Get(ctx, key)
}

func TestRegistry_SlowBuildDoesNotBlockLiveSessions(t *testing.T) {
	f, _, _ := setupFactory(t)
	gated := &gatedStore{
		Memory:  storage.NewMemory(),
		prefix:  "device:slow:",
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	f.Durable = gated
	reg := NewRegistry(f, time.Minute, logging.Discard())
	ctx := context.Background()

	live := reg.Get(ctx, "dev-1", "sess-1")

	slow := make(chan *Session)
	go func() { slow <- reg.Get(ctx, "slow", "sess-2") }()
	<-gated.entered

	got := make(chan *Session)
	go func() { got <- reg.Get(ctx, "dev-1", "sess-1") }()
	select {
	case s := <-got:
		assert.Same(t, live, s)
	case <-time.After(2 * time.Second):
		t.Fatal("cached session blocked behind a build")
	}

	close(gated.gate)
	built := <-slow
	assert.Same(t, built, reg.Get(ctx, "slow", "sess-2"))
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_ConcurrentGetSharesSession(t *testing.T) {
	f, _, _ := setupFactory(t)
	reg := NewRegistry(f, time.Minute, logging.Discard())
	ctx := context.Background()

	var wg sync.WaitGroup
	out := make([]*Session, 8)
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = reg.Get(ctx, "dev-1", "sess-1")
		}(i)
	}
	wg.Wait()

	stored := reg.Get(ctx, "dev-1", "sess-1")
	for _, s := range out {
		assert.Same(t, stored, s)
	}
	assert.Equal(t, 1, reg.Len())
}

func TestMiddleware(t *testing.T) {
	f, _, _ := setupFactory(t)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	mw := NewMiddleware(tokens, NewRegistry(f, time.Minute, logging.Discard()))

	var seen *Session
	probe := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	mw.Required(probe).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec = httptest.NewRecorder()
	mw.Required(probe).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	mw.Optional(probe).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, seen)

	token, _, err := tokens.Issue("dev-1", "sess-1")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mw.Required(probe).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "dev-1", seen.DeviceID)
	assert.Equal(t, "sess-1", seen.SessionID)
}

func TestHandler_OpenKeepsDevice(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	r := chi.NewRouter()
	NewHandler(tokens, logging.Discard()).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var first openResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&first))
	assert.NotEmpty(t, first.Token)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+first.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var second openResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))
	assert.Equal(t, first.DeviceID, second.DeviceID)
	assert.NotEqual(t, first.SessionID, second.SessionID)

	claims, err := tokens.Parse(second.Token)
	require.NoError(t, err)
	assert.Equal(t, second.SessionID, claims.SessionID)
}

func TestResolvers(t *testing.T) {
	f, _, _ := setupFactory(t)
	s := f.Build(context.Background(), "dev-1", "sess-1")

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := Carts(bare)
	assert.False(t, ok)

	req := bare.WithContext(WithSession(bare.Context(), s))
	c, ok := Carts(req)
	require.True(t, ok)
	assert.Same(t, s.Cart, c)
	acc, ok := Accounts(req)
	require.True(t, ok)
	_, signedIn := acc.Identity()
	assert.False(t, signedIn)
}
