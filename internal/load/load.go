// Package load persists the transformed entities in dependency order:
// customers, then products, then (after identity resolution) orders, then
// order items. Every insert is chunked for throughput and idempotent on its
// natural key, so a re-run against the same store converges instead of
// duplicating. There is no transaction spanning stages; recovery from a
// mid-run failure is "run the whole pipeline again".
package load

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"fleximart/internal/domain"
	"fleximart/internal/store"
)

// DefaultBatchSize is the multi-row insert chunk size. Chunking is purely a
// throughput knob; it never affects correctness.
const DefaultBatchSize = 1000

// Loader writes to one store with a fixed batch size.
type Loader struct {
	Store     store.Store
	BatchSize int
	Log       *logrus.Entry
}

// New builds a Loader; batchSize <= 0 falls back to DefaultBatchSize.
func New(st store.Store, batchSize int, log *logrus.Entry) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{Store: st, BatchSize: batchSize, Log: log}
}

// chunked invokes fn on consecutive slices of at most size elements.
func chunked[T any](items []T, size int, fn func([]T) error) error {
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// UpsertCustomers partitions rows by presence of a usable source id: rows
// with one are inserted preserving it, rows without get a store-assigned id.
// Both paths insert-ignore on duplicate email. Returns the number of rows
// submitted.
func (l *Loader) UpsertCustomers(ctx context.Context, customers []domain.Customer) (int, error) {
	l.Log.WithField("stage", "load").Info("load: customers")
	var withID, withoutID []domain.Customer
	for _, c := range customers {
		if c.SourceID != nil {
			withID = append(withID, c)
		} else {
			withoutID = append(withoutID, c)
		}
	}
	if err := chunked(withID, l.BatchSize, func(batch []domain.Customer) error {
		return l.Store.InsertCustomersKeepID(ctx, batch)
	}); err != nil {
		return 0, fmt.Errorf("upsert customers: %w", err)
	}
	if err := chunked(withoutID, l.BatchSize, func(batch []domain.Customer) error {
		return l.Store.InsertCustomersAssignID(ctx, batch)
	}); err != nil {
		return 0, fmt.Errorf("upsert customers: %w", err)
	}
	return len(customers), nil
}

// LoadProducts mirrors UpsertCustomers for products; duplicate-insert
// conflicts are ignored. Returns the number of rows submitted.
func (l *Loader) LoadProducts(ctx context.Context, products []domain.Product) (int, error) {
	l.Log.WithField("stage", "load").Info("load: products")
	var withID, withoutID []domain.Product
	for _, p := range products {
		if p.SourceID != nil {
			withID = append(withID, p)
		} else {
			withoutID = append(withoutID, p)
		}
	}
	if err := chunked(withID, l.BatchSize, func(batch []domain.Product) error {
		return l.Store.InsertProductsKeepID(ctx, batch)
	}); err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	if err := chunked(withoutID, l.BatchSize, func(batch []domain.Product) error {
		return l.Store.InsertProductsAssignID(ctx, batch)
	}); err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	return len(products), nil
}

// BuildOrders groups resolved sales lines by transaction id. The order takes
// the first line's resolved customer and date, and its total is the sum of
// line subtotals. Lines without a transaction id cannot form an order and
// are skipped. Orders come back sorted by id for deterministic inserts.
func BuildOrders(lines []domain.SalesLine) []domain.Order {
	byTxn := map[int64]*domain.Order{}
	var ids []int64
	for _, line := range lines {
		if line.TxnID == nil {
			continue
		}
		o, ok := byTxn[*line.TxnID]
		if !ok {
			o = &domain.Order{
				ID:         *line.TxnID,
				CustomerID: line.CustomerID,
				Date:       line.Date,
				Status:     "Completed",
			}
			byTxn[*line.TxnID] = o
			ids = append(ids, *line.TxnID)
		}
		o.Total += line.Subtotal
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byTxn[id])
	}
	return out
}

// LoadOrdersAndItems persists the orders built from the resolved lines, then
// their items. Items are the FK-sensitive part: after the orders commit, the
// set of order ids actually present is re-read from the store and candidate
// items are filtered to it, so no item is ever attempted against an order
// that silently no-op'd on a prior run's conflicting id. Returns the counts
// of orders and items submitted.
func (l *Loader) LoadOrdersAndItems(ctx context.Context, lines []domain.SalesLine) (int, int, error) {
	l.Log.WithField("stage", "load").Info("load: orders & order_items")

	if mixed := mixedTxns(lines); len(mixed) > 0 {
		l.Log.WithField("stage", "load").Warnf(
			"transactions with lines from multiple customers, attributing to first line: %s",
			strings.Join(mixed, ","))
	}

	orders := BuildOrders(lines)
	if err := chunked(orders, l.BatchSize, func(batch []domain.Order) error {
		return l.Store.InsertOrders(ctx, batch)
	}); err != nil {
		return 0, 0, fmt.Errorf("load orders: %w", err)
	}

	existing, err := l.Store.OrderIDs(ctx)
	if err != nil {
		return len(orders), 0, fmt.Errorf("recheck order ids: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.TxnID == nil || line.SourceProduct == nil {
			continue
		}
		if _, ok := existing[*line.TxnID]; !ok {
			continue
		}
		items = append(items, domain.OrderItem{
			OrderID:   *line.TxnID,
			ProductID: *line.SourceProduct,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	if err := chunked(items, l.BatchSize, func(batch []domain.OrderItem) error {
		return l.Store.InsertOrderItems(ctx, batch)
	}); err != nil {
		return len(orders), 0, fmt.Errorf("load order items: %w", err)
	}
	return len(orders), len(items), nil
}

// mixedTxns lists transaction ids whose lines resolved to different
// customers; the single-customer-per-transaction assumption does not hold
// for them.
func mixedTxns(lines []domain.SalesLine) []string {
	first := map[int64]int64{}
	flagged := map[int64]struct{}{}
	var out []string
	for _, l := range lines {
		if l.TxnID == nil {
			continue
		}
		prev, ok := first[*l.TxnID]
		if !ok {
			first[*l.TxnID] = l.CustomerID
			continue
		}
		if prev != l.CustomerID {
			if _, f := flagged[*l.TxnID]; !f {
				flagged[*l.TxnID] = struct{}{}
				out = append(out, fmt.Sprintf("%d", *l.TxnID))
			}
		}
	}
	return out
}
