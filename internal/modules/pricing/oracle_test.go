package pricing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/jerseyx-backend/internal/logging"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

func TestPriceFor_DeterministicWithinSession(t *testing.T) {
	o := NewOracle(FixedSeed("abc123"))

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("GEN-%d", i)
		first := o.PriceFor(id)
		assert.Equal(t, first, o.PriceFor(id))
		assert.GreaterOrEqual(t, first, MinPrice)
		assert.LessOrEqual(t, first, MaxPrice)
	}
}

func TestPriceFor_SameSeedSamePrice(t *testing.T) {
	a := NewOracle(FixedSeed("s1"))
	b := NewOracle(FixedSeed("s1"))
	assert.Equal(t, a.PriceFor("FB-NY-01"), b.PriceFor("FB-NY-01"))
}

func TestPriceFor_SeedChangesPrices(t *testing.T) {
	a := NewOracle(FixedSeed("s1"))
	b := NewOracle(FixedSeed("s2"))

	differs := false
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("GEN-%d", i)
		if a.PriceFor(id) != b.PriceFor(id) {
			differs = true
			break
		}
	}
	assert.True(t, differs, "a new seed should move at least one price")
}

func TestPriceFor_SeedSourceCalledOnce(t *testing.T) {
	calls := 0
	o := NewOracle(func() string {
		calls++
		return "seed"
	})
	o.PriceFor("a")
	o.PriceFor("b")
	assert.Equal(t, 1, calls)
}

func TestSessionSeed_PersistsAndReuses(t *testing.T) {
	store := storage.NewMemory()
	logger := logging.Discard()

	first := NewOracle(SessionSeed(store, logger)).PriceFor("FB-NY-01")

	seed, err := store.Get(context.Background(), seedKey)
	require.NoError(t, err)
	require.NotEmpty(t, seed)

	again := NewOracle(SessionSeed(store, logger)).PriceFor("FB-NY-01")
	assert.Equal(t, first, again)
}

func TestPriceRange(t *testing.T) {
	assert.Equal(t, Range{Min: 1000, Max: 3000}, PriceRange())
}
