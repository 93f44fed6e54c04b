package session

import (
	"net/http"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/auth"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/checkout"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/preferences"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/wishlist"
)

// Resolvers adapt the request's session to each module handler.

func Carts(r *http.Request) (*cart.Store, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Cart, true
}

func Wishlists(r *http.Request) (*wishlist.Store, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Wishlist, true
}

func Ledgers(r *http.Request) (order.Service, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Orders, true
}

func Checkouts(r *http.Request) (*checkout.Orchestrator, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Checkout, true
}

func Accounts(r *http.Request) (auth.Account, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s, true
}

func Prices(r *http.Request) (catalog.Pricer, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Prices, true
}

func Preferences(r *http.Request) (*preferences.Store, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return s.Preferences, true
}

var (
	_ cart.Resolver          = Carts
	_ wishlist.Resolver      = Wishlists
	_ order.Resolver         = Ledgers
	_ checkout.Resolver      = Checkouts
	_ auth.AccountResolver   = Accounts
	_ catalog.PricerResolver = Prices
	_ preferences.Resolver   = Preferences
)
