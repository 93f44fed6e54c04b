// Package pricing simulates live prices: each product gets a price inside a
// fixed band that is stable for one session and changes with the next.
package pricing

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

const (
	MinPrice = 1000
	MaxPrice = 3000

	seedKey = "jerseyx_price_seed"
)

// SeedSource yields the session seed. It is called at most once per Oracle.
type SeedSource func() string

// Oracle maps product ids to session-stable prices.
type Oracle struct {
	once    sync.Once
	seed    string
	newSeed SeedSource
}

func NewOracle(source SeedSource) *Oracle {
	return &Oracle{newSeed: source}
}

// FixedSeed always yields seed.
func FixedSeed(seed string) SeedSource {
	return func() string { return seed }
}

// RandomSeed yields a fresh base-36 seed.
func RandomSeed() string {
	return strconv.FormatInt(rand.Int63n(1_000_000_000), 36)
}

// SessionSeed reads the seed from the session store, creating and saving a
// random one when none exists. Store failures fall back to an unsaved seed.
func SessionSeed(store storage.Store, logger log.FieldLogger) SeedSource {
	return func() string {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		seed, err := store.Get(ctx, seedKey)
		if err == nil && seed != "" {
			return seed
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.WithError(err).Warn("reading price seed")
		}

		seed = RandomSeed()
		if err := store.Set(ctx, seedKey, seed); err != nil {
			logger.WithError(err).Warn("saving price seed")
		}
		return seed
	}
}

// PriceFor returns the session price of productID in [MinPrice, MaxPrice].
func (o *Oracle) PriceFor(productID string) int {
	o.once.Do(func() {
		if o.newSeed == nil {
			o.seed = RandomSeed()
			return
		}
		o.seed = o.newSeed()
	})
	return priceFrom(productID, o.seed)
}

func priceFrom(productID, seed string) int {
	h := xxhash.Sum64String(productID + ":" + seed)
	frac := float64(h) / float64(math.MaxUint64)
	return int(math.Round(MinPrice + frac*(MaxPrice-MinPrice)))
}

// Range is the band prices are drawn from, used by shop price filters.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func PriceRange() Range { return Range{Min: MinPrice, Max: MaxPrice} }
