// Package wishlist keeps the products a shopper saved for later.
package wishlist

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

const storageKey = "jerseyx_wishlist"

// Store is the wishlist of one session, persisted the same best-effort way
// as the cart.
type Store struct {
	mu      sync.RWMutex
	items   []catalog.Snapshot
	storage storage.Store
	logger  log.FieldLogger
}

func NewStore(ctx context.Context, s storage.Store, logger log.FieldLogger) *Store {
	st := &Store{storage: s, logger: logger.WithField("store", "wishlist")}

	var saved []catalog.Snapshot
	err := storage.LoadJSON(ctx, s, storageKey, &saved)
	switch {
	case err == nil:
		st.items = saved
	case !errors.Is(err, storage.ErrNotFound):
		st.logger.WithError(err).Warn("discarding unreadable wishlist")
	}
	return st
}

// Add saves snap unless its id is already present. A snapshot without
// images gets its sport's cover pair.
func (s *Store) Add(ctx context.Context, snap catalog.Snapshot) {
	s.mu.Lock()
	if s.indexOf(snap.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items, snap.WithCover())
	s.persistLocked(ctx)
}

func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.persistLocked(ctx)
}

// Toggle adds snap when absent and removes it when present. It reports
// whether the product is wishlisted afterwards.
func (s *Store) Toggle(ctx context.Context, snap catalog.Snapshot) bool {
	s.mu.Lock()
	if i := s.indexOf(snap.ID); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		s.persistLocked(ctx)
		return false
	}
	s.items = append(s.items, snap.WithCover())
	s.persistLocked(ctx)
	return true
}

func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
}

func (s *Store) Items() []catalog.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Snapshot, len(s.items))
	for i, snap := range s.items {
		out[i] = snap.Clone()
	}
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexOf(id string) int {
	for i, snap := range s.items {
		if snap.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked releases the lock before writing.
func (s *Store) persistLocked(ctx context.Context) {
	snapshot := make([]catalog.Snapshot, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	if err := storage.SaveJSON(ctx, s.storage, storageKey, snapshot); err != nil {
		s.logger.WithError(err).WithField("items", len(snapshot)).Warn("persisting wishlist")
	}
}
