package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fleximart/internal/domain"
)

// pgConnLike is the minimal subset of *pgx.Conn the adapter uses. The seam
// lets unit tests inject a fake connection without a live server.
type pgConnLike interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

// pgStore is the Postgres adapter.
type pgStore struct{ conn pgConnLike }

// NewPostgres connects to Postgres and wraps the connection in a Store.
// Callers own the lifecycle and must Close it.
func NewPostgres(ctx context.Context, dsn string) (Store, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &pgStore{conn: c}, nil
}

// newPgStoreFromConn builds an adapter around a fake connection. Test use only.
func newPgStoreFromConn(c pgConnLike) *pgStore { return &pgStore{conn: c} }

var pgDDL = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		first_name VARCHAR(50) NOT NULL,
		last_name VARCHAR(50) NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		phone VARCHAR(20),
		city VARCHAR(50),
		registration_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		product_name VARCHAR(100) NOT NULL,
		category VARCHAR(50) NOT NULL,
		price NUMERIC(10,2) NOT NULL,
		stock_quantity INT DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		order_date DATE,
		total_amount NUMERIC(10,2) NOT NULL,
		status VARCHAR(20) DEFAULT 'Pending',
		CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id)
			REFERENCES customers(customer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		order_item_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		unit_price NUMERIC(10,2) NOT NULL,
		subtotal NUMERIC(10,2) NOT NULL,
		CONSTRAINT fk_items_order FOREIGN KEY (order_id)
			REFERENCES orders(order_id),
		CONSTRAINT fk_items_product FOREIGN KEY (product_id)
			REFERENCES products(product_id)
	)`,
	// The line natural key makes order_items idempotent across re-runs:
	// duplicate lines conflict here and are ignored.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_order_items_line
		ON order_items(order_id, product_id, quantity, unit_price)`,
}

func (s *pgStore) EnsureSchema(ctx context.Context) error {
	for _, ddl := range pgDDL {
		if _, err := s.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// valuesClause renders "($1,$2),($3,$4)..." for rows of the given width.
func valuesClause(rows, width int) string {
	var b strings.Builder
	arg := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('(')
		for c := 0; c < width; c++ {
			if c > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteByte(')')
	}
	return b.String()
}

func (s *pgStore) InsertCustomersKeepID(ctx context.Context, customers []domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	args := make([]any, 0, len(customers)*7)
	for _, c := range customers {
		args = append(args, c.SourceID, c.FirstName, c.LastName, c.Email, c.Phone, c.City, c.RegDate)
	}
	q := `INSERT INTO customers (customer_id, first_name, last_name, email, phone, city, registration_date)
		OVERRIDING SYSTEM VALUE VALUES ` + valuesClause(len(customers), 7) + `
		ON CONFLICT (email) DO NOTHING`
	if _, err := s.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert customers (keep id): %w", err)
	}
	return nil
}

func (s *pgStore) InsertCustomersAssignID(ctx context.Context, customers []domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	args := make([]any, 0, len(customers)*6)
	for _, c := range customers {
		args = append(args, c.FirstName, c.LastName, c.Email, c.Phone, c.City, c.RegDate)
	}
	q := `INSERT INTO customers (first_name, last_name, email, phone, city, registration_date)
		VALUES ` + valuesClause(len(customers), 6) + `
		ON CONFLICT (email) DO NOTHING`
	if _, err := s.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert customers (assign id): %w", err)
	}
	return nil
}

func (s *pgStore) CustomerIDsByEmail(ctx context.Context) (map[string]int64, error) {
	rows, err := s.conn.Query(ctx, `SELECT email, customer_id FROM customers`)
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

func (s *pgStore) InsertProductsKeepID(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	args := make([]any, 0, len(products)*5)
	for _, p := range products {
		args = append(args, p.SourceID, p.Name, p.Category, p.Price, p.Stock)
	}
	q := `INSERT INTO products (product_id, product_name, category, price, stock_quantity)
		OVERRIDING SYSTEM VALUE VALUES ` + valuesClause(len(products), 5) + `
		ON CONFLICT DO NOTHING`
	if _, err := s.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert products (keep id): %w", err)
	}
	return nil
}

func (s *pgStore) InsertProductsAssignID(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	args := make([]any, 0, len(products)*4)
	for _, p := range products {
		args = append(args, p.Name, p.Category, p.Price, p.Stock)
	}
	q := `INSERT INTO products (product_name, category, price, stock_quantity)
		VALUES ` + valuesClause(len(products), 4) + `
		ON CONFLICT DO NOTHING`
	if _, err := s.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert products (assign id): %w", err)
	}
	return nil
}

func (s *pgStore) InsertOrders(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	args := make([]any, 0, len(orders)*5)
	for _, o := range orders {
		args = append(args, o.ID, o.CustomerID, o.Date, o.Total, o.Status)
	}
	q := `INSERT INTO orders (order_id, customer_id, order_date, total_amount, status)
		OVERRIDING SYSTEM VALUE VALUES ` + valuesClause(len(orders), 5) + `
		ON CONFLICT (order_id) DO NOTHING`
	if _, err := s.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}
	return nil
}

func (s *pgStore) OrderIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT order_id FROM orders`)
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

func (s *pgStore) InsertOrderItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, len(items)*5)
	for _, it := range items {
		args = append(args, it.OrderID, it.ProductID, it.Qty, it.UnitPrice, it.Subtotal)
	}
	q := `INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ` + valuesClause(len(items), 5) + `
		ON CONFLICT (order_id, product_id, quantity, unit_price) DO NOTHING`
	if _, err := s.conn.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (s *pgStore) Close(ctx context.Context) error { return s.conn.Close(ctx) }
