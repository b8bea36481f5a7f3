package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"fleximart/internal/domain"
)

// sqliteStore is the embedded-database adapter, backed by modernc's pure-Go
// sqlite driver. It exists for local runs without a Postgres instance and
// for hermetic loader tests. INTEGER PRIMARY KEY columns give the same
// assign-on-insert identity semantics as Postgres identities, and
// INSERT OR IGNORE supplies the conflict-ignore discipline.
type sqliteStore struct{ db *sql.DB }

// NewSQLite opens (or creates) the sqlite database at path. ":memory:" gives
// a throwaway in-process store.
func NewSQLite(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The loader is strictly sequential; one connection keeps :memory:
	// databases stable across calls and makes the pragma below stick.
	db.SetMaxOpenConns(1)
	// SQLite leaves REFERENCES clauses inert unless asked; without this an
	// order item pointing at a missing product would persist silently
	// instead of failing the run like the Postgres backend does.
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT,
		city TEXT,
		registration_date TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER PRIMARY KEY,
		product_name TEXT NOT NULL,
		category TEXT NOT NULL,
		price REAL NOT NULL,
		stock_quantity INTEGER DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		order_date TEXT,
		total_amount REAL NOT NULL,
		status TEXT DEFAULT 'Pending'
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_item_id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL REFERENCES orders(order_id),
		product_id INTEGER NOT NULL REFERENCES products(product_id),
		quantity INTEGER NOT NULL,
		unit_price REAL NOT NULL,
		subtotal REAL NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_order_items_line
		ON order_items(order_id, product_id, quantity, unit_price)`,
}

func (s *sqliteStore) EnsureSchema(ctx context.Context) error {
	for _, ddl := range sqliteDDL {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// qMarks renders "(?,?),(?,?)..." for rows of the given width.
func qMarks(rows, width int) string {
	one := "(" + strings.TrimSuffix(strings.Repeat("?,", width), ",") + ")"
	parts := make([]string, rows)
	for i := range parts {
		parts[i] = one
	}
	return strings.Join(parts, ",")
}

func (s *sqliteStore) InsertCustomersKeepID(ctx context.Context, customers []domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	args := make([]any, 0, len(customers)*7)
	for _, c := range customers {
		args = append(args, nullableID(c.SourceID), c.FirstName, c.LastName, c.Email, nullable(c.Phone), nullable(c.City), nullable(c.RegDate))
	}
	q := `INSERT OR IGNORE INTO customers (customer_id, first_name, last_name, email, phone, city, registration_date)
		VALUES ` + qMarks(len(customers), 7)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert customers (keep id): %w", err)
	}
	return nil
}

func (s *sqliteStore) InsertCustomersAssignID(ctx context.Context, customers []domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	args := make([]any, 0, len(customers)*6)
	for _, c := range customers {
		args = append(args, c.FirstName, c.LastName, c.Email, nullable(c.Phone), nullable(c.City), nullable(c.RegDate))
	}
	q := `INSERT OR IGNORE INTO customers (first_name, last_name, email, phone, city, registration_date)
		VALUES ` + qMarks(len(customers), 6)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert customers (assign id): %w", err)
	}
	return nil
}

func (s *sqliteStore) CustomerIDsByEmail(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, customer_id FROM customers`)
	if err != nil {
		return nil, fmt.Errorf("select customer emails: %w", err)
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var email string
		var id int64
		if err := rows.Scan(&email, &id); err != nil {
			return nil, fmt.Errorf("scan customer email row: %w", err)
		}
		out[email] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer emails: %w", err)
	}
	return out, nil
}

func (s *sqliteStore) InsertProductsKeepID(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	args := make([]any, 0, len(products)*5)
	for _, p := range products {
		args = append(args, nullableID(p.SourceID), p.Name, p.Category, p.Price, p.Stock)
	}
	q := `INSERT OR IGNORE INTO products (product_id, product_name, category, price, stock_quantity)
		VALUES ` + qMarks(len(products), 5)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert products (keep id): %w", err)
	}
	return nil
}

func (s *sqliteStore) InsertProductsAssignID(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	args := make([]any, 0, len(products)*4)
	for _, p := range products {
		args = append(args, p.Name, p.Category, p.Price, p.Stock)
	}
	q := `INSERT OR IGNORE INTO products (product_name, category, price, stock_quantity)
		VALUES ` + qMarks(len(products), 4)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert products (assign id): %w", err)
	}
	return nil
}

func (s *sqliteStore) InsertOrders(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	args := make([]any, 0, len(orders)*5)
	for _, o := range orders {
		args = append(args, o.ID, o.CustomerID, nullable(o.Date), o.Total, o.Status)
	}
	q := `INSERT OR IGNORE INTO orders (order_id, customer_id, order_date, total_amount, status)
		VALUES ` + qMarks(len(orders), 5)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}
	return nil
}

func (s *sqliteStore) OrderIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT order_id FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("select order ids: %w", err)
	}
	defer rows.Close()
	out := map[int64]struct{}{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order ids: %w", err)
	}
	return out, nil
}

func (s *sqliteStore) InsertOrderItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, len(items)*5)
	for _, it := range items {
		args = append(args, it.OrderID, it.ProductID, it.Qty, it.UnitPrice, it.Subtotal)
	}
	q := `INSERT OR IGNORE INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ` + qMarks(len(items), 5)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close(ctx context.Context) error { return s.db.Close() }

// nullable converts an optional string to a driver-friendly value.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullableID converts an optional id to a driver-friendly value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
