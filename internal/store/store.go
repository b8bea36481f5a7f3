// Package store holds the relational store contract and its adapters.
// Two backends are provided: Postgres over pgx (the production target) and
// an embedded sqlite database (useful for local runs and hermetic tests).
// Both share the same semantics: identity primary keys the store assigns on
// first insert, and insert-ignore on conflicting natural keys so re-runs
// converge instead of duplicating or erroring.
package store

import (
	"context"

	"fleximart/internal/domain"
)

// Store is everything the load stage needs from the relational store.
// Every insert accepts a full batch; adapters issue one multi-row statement
// per call, so callers control chunking. All conflict handling is
// insert-ignore: duplicate emails, order ids, and order-item line keys
// silently no-op.
type Store interface {
	// EnsureSchema creates the four tables (and supporting indexes) when
	// absent. Safe to call on every run.
	EnsureSchema(ctx context.Context) error

	// InsertCustomersKeepID persists customers preserving their source ids,
	// bypassing the store's id assignment.
	InsertCustomersKeepID(ctx context.Context, customers []domain.Customer) error
	// InsertCustomersAssignID persists customers letting the store assign
	// durable ids.
	InsertCustomersAssignID(ctx context.Context, customers []domain.Customer) error
	// CustomerIDsByEmail returns the live email -> durable id mapping.
	CustomerIDsByEmail(ctx context.Context) (map[string]int64, error)

	InsertProductsKeepID(ctx context.Context, products []domain.Product) error
	InsertProductsAssignID(ctx context.Context, products []domain.Product) error

	InsertOrders(ctx context.Context, orders []domain.Order) error
	// OrderIDs returns the set of order ids actually present in the store;
	// the loader filters order items against it before inserting.
	OrderIDs(ctx context.Context) (map[int64]struct{}, error)
	InsertOrderItems(ctx context.Context, items []domain.OrderItem) error

	Close(ctx context.Context) error
}
