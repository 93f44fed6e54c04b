// Package storage provides the key/value capabilities the session stores
// persist through. DurableStore data outlives a session; SessionStore data
// expires with it. Both share one interface so backends and test fakes can
// be swapped freely.
package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store.
type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// DurableStore survives reloads and new sessions on the same device.
type DurableStore interface{ Store }

// SessionStore is cleared when the session ends.
type SessionStore interface{ Store }

// LoadJSON decodes the value stored under key into v.
func LoadJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return errors.Wrapf(err, "decoding %s", key)
	}
	return nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return s.Set(ctx, key, string(b))
}

type namespaced struct {
	store  Store
	prefix string
}

// Namespace scopes every key of s under prefix.
func Namespace(s Store, prefix string) Store {
	return &namespaced{store: s, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.store.Remove(ctx, n.prefix+key)
}
