package order

import (
	"context"

	"github.com/pkg/errors"

	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

// Repository defines data access for order history partitions.
type Repository interface {
	// Load returns the partition's orders, most recent first. An unknown
	// partition is empty.
	Load(ctx context.Context, partition string) ([]Order, error)

	// Save replaces the partition's orders.
	Save(ctx context.Context, partition string, orders []Order) error
}

type storeRepo struct{ store storage.Store }

// NewStoreRepository keeps each partition as one JSON list under the
// partition key.
func NewStoreRepository(store storage.Store) Repository { return &storeRepo{store: store} }

func (r *storeRepo) Load(ctx context.Context, partition string) ([]Order, error) {
	var orders []Order
	err := storage.LoadJSON(ctx, r.store, partition, &orders)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", partition)
	}
	return orders, nil
}

func (r *storeRepo) Save(ctx context.Context, partition string, orders []Order) error {
	if orders == nil {
		orders = []Order{}
	}
	return storage.SaveJSON(ctx, r.store, partition, orders)
}
