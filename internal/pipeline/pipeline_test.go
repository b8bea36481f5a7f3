package pipeline

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"fleximart/internal/config"
	"fleximart/internal/store"
)

const (
	customersCSV = `customer_id,first_name,last_name,email,phone,city,registration_date
1,Asha,Rao,asha.rao@example.com,+91 98765-43210,Pune,15/01/2023
2,Vikram,Shah,vikram@example.com,98222 11000,Mumbai,2023-02-20
3,Asha,Rao,ASHA.RAO@example.com ,123,Pune,2023-02-30
4,Meera,Iyer,,,Chennai,2023-03-05
`
	productsCSV = `product_id,product_name,category,price,stock_quantity
10,Desk Lamp,home,499.00,3
11,USB Cable,electronics,,12.0
10,Desk Lamp,home,499.00,3
`
	salesCSV = `transaction_id,transaction_date,customer_id,product_id,quantity,unit_price
100,2023-01-10,1,10,2,49.50
100,2023-01-10,1,11,1,99.00
101,2023-01-11,2,10,1,499.00
101,2023-01-11,2,10,1,499.00
102,2023-01-12,77,10,1,499.00
103,2023-01-13,,10,1,499.00
`
)

func writeFixtures(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, data string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}
	return &config.Config{
		CustomersFile: write("customers_raw.csv", customersCSV),
		ProductsFile:  write("products_raw.csv", productsCSV),
		SalesFile:     write("sales_raw.csv", salesCSV),
		Driver:        "sqlite",
		SQLitePath:    filepath.Join(dir, "fleximart.db"),
		BatchSize:     2,
		CountryCode:   "+91-",
	}
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type tableCounts struct {
	customers, products, orders, items int
}

func countTables(t *testing.T, path string) tableCounts {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var c tableCounts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"customers", &c.customers},
		{"products", &c.products},
		{"orders", &c.orders},
		{"order_items", &c.items},
	} {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			t.Fatalf("count %s: %v", q.table, err)
		}
	}
	return c
}

func runOnce(t *testing.T, cfg *config.Config, runID string) {
	t.Helper()
	st, err := store.NewSQLite(cfg.SQLiteDSN())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer st.Close(context.Background())
	if _, err := Run(context.Background(), cfg, st, runID, testLog()); err != nil {
		t.Fatalf("Run %s: %v", runID, err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := writeFixtures(t)

	st, err := store.NewSQLite(cfg.SQLiteDSN())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	rep, err := Run(context.Background(), cfg, st, "run1", testLog())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	st.Close(context.Background())

	// 4 customer rows, one duplicate email (case/whitespace variant), one
	// missing email synthesized.
	if rep.Customers.Stats.Processed != 4 || rep.Customers.Stats.DuplicatesRemoved != 1 {
		t.Errorf("customer stats = %+v", rep.Customers.Stats)
	}
	if rep.Customers.Stats.MissingHandled != 1 {
		t.Errorf("customer missing = %d, want 1 synthesized email", rep.Customers.Stats.MissingHandled)
	}
	if rep.Customers.Loaded != 3 {
		t.Errorf("customers loaded = %d, want 3", rep.Customers.Loaded)
	}

	// 3 product rows, one exact duplicate; missing price coerced.
	if rep.Products.Stats.Processed != 3 || rep.Products.Stats.DuplicatesRemoved != 1 {
		t.Errorf("product stats = %+v", rep.Products.Stats)
	}
	if rep.Products.Loaded != 2 {
		t.Errorf("products loaded = %d, want 2", rep.Products.Loaded)
	}

	// 6 sales rows: one exact duplicate, one dangling customer id (77), one
	// missing customer id. Three transactions survive with four lines.
	if rep.Sales.Stats.Processed != 6 || rep.Sales.Stats.DuplicatesRemoved != 1 {
		t.Errorf("sales stats = %+v", rep.Sales.Stats)
	}
	if rep.Sales.Stats.MissingHandled != 2 {
		t.Errorf("sales missing = %d, want 2", rep.Sales.Stats.MissingHandled)
	}
	if rep.Orders != 2 || rep.Items != 3 {
		t.Errorf("orders/items = %d/%d, want 2/3", rep.Orders, rep.Items)
	}

	c := countTables(t, cfg.SQLitePath)
	want := tableCounts{customers: 3, products: 2, orders: 2, items: 3}
	if c != want {
		t.Errorf("table counts = %+v, want %+v", c, want)
	}
}

func TestRunIdempotence(t *testing.T) {
	cfg := writeFixtures(t)

	runOnce(t, cfg, "run1")
	runOnce(t, cfg, "run2")
	after2 := countTables(t, cfg.SQLitePath)
	runOnce(t, cfg, "run3")
	after3 := countTables(t, cfg.SQLitePath)

	if after2 != after3 {
		t.Errorf("counts diverged across reruns: %+v vs %+v", after2, after3)
	}
	want := tableCounts{customers: 3, products: 2, orders: 2, items: 3}
	if after2 != want {
		t.Errorf("counts after rerun = %+v, want %+v", after2, want)
	}
}

func TestRunDataIntegrity(t *testing.T) {
	cfg := writeFixtures(t)
	runOnce(t, cfg, "run1")

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var total, distinct int
	if err := db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT email) FROM customers`).Scan(&total, &distinct); err != nil {
		t.Fatalf("email uniqueness: %v", err)
	}
	if total != distinct {
		t.Errorf("emails not unique: %d rows, %d distinct", total, distinct)
	}

	var orphans int
	if err := db.QueryRow(`SELECT COUNT(*) FROM order_items oi
		LEFT JOIN orders o ON o.order_id = oi.order_id
		WHERE o.order_id IS NULL`).Scan(&orphans); err != nil {
		t.Fatalf("orphan check: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d order items reference missing orders", orphans)
	}

	var productOrphans int
	if err := db.QueryRow(`SELECT COUNT(*) FROM order_items oi
		LEFT JOIN products p ON p.product_id = oi.product_id
		WHERE p.product_id IS NULL`).Scan(&productOrphans); err != nil {
		t.Fatalf("product orphan check: %v", err)
	}
	if productOrphans != 0 {
		t.Errorf("%d order items reference missing products", productOrphans)
	}

	var mismatched int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders o
		WHERE ABS(o.total_amount - (SELECT SUM(oi.subtotal) FROM order_items oi
			WHERE oi.order_id = o.order_id)) > 0.001`).Scan(&mismatched); err != nil {
		t.Fatalf("total check: %v", err)
	}
	if mismatched != 0 {
		t.Errorf("%d orders whose total does not match the item subtotals", mismatched)
	}

	var status string
	if err := db.QueryRow(`SELECT DISTINCT status FROM orders`).Scan(&status); err != nil {
		t.Fatalf("status check: %v", err)
	}
	if status != "Completed" {
		t.Errorf("order status = %q, want Completed", status)
	}
}

func TestRunFailsOnUnknownProduct(t *testing.T) {
	cfg := writeFixtures(t)
	// A sales line whose product id matches nothing in the products extract
	// must abort the run with a foreign key error, never load silently.
	bad := salesCSV + "104,2023-01-14,1,999,1,10.00\n"
	if err := os.WriteFile(cfg.SalesFile, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := store.NewSQLite(cfg.SQLiteDSN())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer st.Close(context.Background())
	if _, err := Run(context.Background(), cfg, st, "run1", testLog()); err == nil {
		t.Fatal("want foreign key error for sales line with unknown product")
	}

	// Batches before the failing statement may persist (no cross-stage
	// transaction), but nothing referencing the unknown product may.
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var orphans int
	if err := db.QueryRow(`SELECT COUNT(*) FROM order_items oi
		LEFT JOIN products p ON p.product_id = oi.product_id
		WHERE p.product_id IS NULL`).Scan(&orphans); err != nil {
		t.Fatalf("product orphan check: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d order items reference the unknown product", orphans)
	}
}

func TestRunFailsOnMissingColumn(t *testing.T) {
	cfg := writeFixtures(t)
	bad := filepath.Join(t.TempDir(), "customers_raw.csv")
	if err := os.WriteFile(bad, []byte("customer_id,first_name\n1,Asha\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.CustomersFile = bad

	st, err := store.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer st.Close(context.Background())
	if _, err := Run(context.Background(), cfg, st, "run1", testLog()); err == nil {
		t.Fatal("want extraction error for missing columns")
	}
}
