// Package repository provides the persistence backends for call records.
// Three backends share one interface: Postgres for durable storage, Redis
// for a lightweight cache-style store, and an in-memory slice that keeps
// the demo runnable without any infrastructure. The Chain store composes
// them with first-success-wins fallback.
package repository

import (
	"context"

	"callintake_backend/internal/calls/transport"
)

// Store persists and lists call records. List returns records newest first.
type Store interface {
	// Name identifies the backend for logging.
	Name() string
	Save(ctx context.Context, record transport.CallRecord) error
	List(ctx context.Context) ([]transport.CallRecord, error)
	Clear(ctx context.Context) error
}
