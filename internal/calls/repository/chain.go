package repository

import (
	"context"
	"errors"
	"fmt"

	"callintake_backend/internal/calls/transport"
	"callintake_backend/platform/logger"
)

// Chain composes stores in priority order. Reads and writes go to the first
// backend that succeeds; a failing backend is logged and the next one takes
// over. A Postgres-Redis-memory chain keeps records flowing even when the
// durable backends are down.
type Chain struct {
	stores []Store
	log    *logger.Logger
}

// NewChain creates a chain over the given stores. Order is priority order.
func NewChain(log *logger.Logger, stores ...Store) *Chain {
	return &Chain{stores: stores, log: log}
}

// Name identifies the backend for logging.
func (c *Chain) Name() string { return "chain" }

// Save writes to the first store that accepts the record.
func (c *Chain) Save(ctx context.Context, record transport.CallRecord) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Save(ctx, record); err != nil {
			c.log.StorageError(store.Name(), "save", err)
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			continue
		}
		return nil
	}
	return fmt.Errorf("all stores failed to save: %w", errors.Join(errs...))
}

// List reads from the first store that responds.
func (c *Chain) List(ctx context.Context) ([]transport.CallRecord, error) {
	var errs []error
	for _, store := range c.stores {
		records, err := store.List(ctx)
		if err != nil {
			c.log.StorageError(store.Name(), "list", err)
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
			continue
		}
		return records, nil
	}
	return nil, fmt.Errorf("all stores failed to list: %w", errors.Join(errs...))
}

// Clear wipes every store so no stale records resurface from a fallback
// backend later.
func (c *Chain) Clear(ctx context.Context) error {
	var errs []error
	for _, store := range c.stores {
		if err := store.Clear(ctx); err != nil {
			c.log.StorageError(store.Name(), "clear", err)
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Compile-time check that Chain implements Store.
var _ Store = (*Chain)(nil)
