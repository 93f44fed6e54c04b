// Package cart holds a session's shopping cart.
package cart

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

const storageKey = "jerseyx_cart"

// Lookup resolves a catalog product for lines saved without a snapshot.
type Lookup interface {
	Lookup(id string) (catalog.Product, bool)
}

// Store is the cart of one session. Every mutation is written through to
// durable storage; write failures are logged and the in-memory lines stay
// authoritative.
type Store struct {
	mu      sync.RWMutex
	items   []LineItem
	storage storage.Store
	lookup  Lookup
	logger  log.FieldLogger
}

// NewStore restores the cart saved in s, starting empty when nothing
// usable is stored.
func NewStore(ctx context.Context, s storage.Store, lookup Lookup, logger log.FieldLogger) *Store {
	st := &Store{storage: s, lookup: lookup, logger: logger.WithField("store", "cart")}

	var saved []LineItem
	err := storage.LoadJSON(ctx, s, storageKey, &saved)
	switch {
	case err == nil:
		for _, l := range saved {
			if l.ProductID != "" && l.Qty > 0 {
				st.items = append(st.items, l)
			}
		}
	case !errors.Is(err, storage.ErrNotFound):
		st.logger.WithError(err).Warn("discarding unreadable cart")
	}
	return st
}

// Add increases the quantity of the (productID, size) line, creating it
// when absent. A non-positive qty counts as one. An existing line keeps its
// snapshot and customization unless new ones are given.
func (s *Store) Add(ctx context.Context, productID, size string, qty int, snap *catalog.Snapshot, custom *Customization) {
	if qty <= 0 {
		qty = 1
	}
	s.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].matches(productID, size) {
				items[i].Qty += qty
				if snap != nil {
					items[i].Product = cloneSnapshot(snap)
				}
				if custom != nil {
					items[i].Custom = cloneCustom(custom)
				}
				return items
			}
		}
		return append(items, newLine(productID, size, qty, snap, custom))
	})
}

// Remove deletes the matching line; absent lines are ignored.
func (s *Store) Remove(ctx context.Context, productID, size string) {
	s.mutate(ctx, func(items []LineItem) []LineItem {
		out := items[:0]
		for _, l := range items {
			if !l.matches(productID, size) {
				out = append(out, l)
			}
		}
		return out
	})
}

// Update sets the quantity of the matching line; absent lines are ignored.
// A non-positive qty removes the line, so no stored line ever has qty < 1.
func (s *Store) Update(ctx context.Context, productID, size string, qty int) {
	if qty <= 0 {
		s.Remove(ctx, productID, size)
		return
	}
	s.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].matches(productID, size) {
				items[i].Qty = qty
			}
		}
		return items
	})
}

// ReplaceWithSingle drops every line and leaves exactly the given one.
func (s *Store) ReplaceWithSingle(ctx context.Context, productID, size string, qty int, snap *catalog.Snapshot, custom *Customization) {
	if qty <= 0 {
		qty = 1
	}
	s.mutate(ctx, func([]LineItem) []LineItem {
		return []LineItem{newLine(productID, size, qty, snap, custom)}
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func([]LineItem) []LineItem { return nil })
}

// Items returns a copy of the raw lines.
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LineItem, len(s.items))
	for i, l := range s.items {
		out[i] = l.clone()
	}
	return out
}

// Count is the sum of quantities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.items {
		n += l.Qty
	}
	return n
}

// Detailed resolves each line's product from its snapshot or the catalog.
// Lines that resolve to nothing are left out.
func (s *Store) Detailed() []DetailedLine {
	items := s.Items()
	out := make([]DetailedLine, 0, len(items))
	for _, l := range items {
		var snap catalog.Snapshot
		switch {
		case l.Product != nil:
			snap = *l.Product
		case s.lookup != nil:
			p, ok := s.lookup.Lookup(l.ProductID)
			if !ok {
				continue
			}
			snap = p.Snapshot()
		default:
			continue
		}
		out = append(out, DetailedLine{
			ProductID: l.ProductID,
			Size:      l.Size,
			Qty:       l.Qty,
			Product:   snap,
			Custom:    l.Custom,
		})
	}
	return out
}

// Total sums price times quantity over Detailed.
func (s *Store) Total() float64 {
	var total float64
	for _, d := range s.Detailed() {
		total += d.LineTotal()
	}
	return total
}

func (s *Store) Summary() Summary {
	detailed := s.Detailed()
	var total float64
	for _, d := range detailed {
		total += d.LineTotal()
	}
	return Summary{Items: s.Items(), Detailed: detailed, Count: s.Count(), Total: total}
}

func (s *Store) mutate(ctx context.Context, fn func([]LineItem) []LineItem) {
	s.mu.Lock()
	s.items = fn(s.items)
	snapshot := make([]LineItem, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	if err := storage.SaveJSON(ctx, s.storage, storageKey, snapshot); err != nil {
		s.logger.WithError(err).WithField("lines", len(snapshot)).Warn("persisting cart")
	}
}

func newLine(productID, size string, qty int, snap *catalog.Snapshot, custom *Customization) LineItem {
	return LineItem{
		ProductID: productID,
		Size:      size,
		Qty:       qty,
		Product:   cloneSnapshot(snap),
		Custom:    cloneCustom(custom),
	}
}

func cloneSnapshot(snap *catalog.Snapshot) *catalog.Snapshot {
	if snap == nil {
		return nil
	}
	c := snap.Clone()
	return &c
}

func cloneCustom(custom *Customization) *Customization {
	if custom == nil {
		return nil
	}
	c := NormalizeCustomization(*custom)
	return &c
}
