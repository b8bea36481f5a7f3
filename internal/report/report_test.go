package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fleximart/internal/transform"
)

func sampleReport() *Report {
	return &Report{
		RunID: "ab12cd34",
		Customers: Source{
			Stats:  transform.Stats{Processed: 12, DuplicatesRemoved: 2, MissingHandled: 3},
			Loaded: 10,
		},
		Products: Source{
			Stats:  transform.Stats{Processed: 8, DuplicatesRemoved: 1, MissingHandled: 2},
			Loaded: 7,
		},
		Sales: Source{
			Stats: transform.Stats{Processed: 20, DuplicatesRemoved: 1, MissingHandled: 2},
		},
		Orders:        9,
		Items:         17,
		CustomersFile: "/data/customers_raw.csv",
		ProductsFile:  "/data/products_raw.csv",
		SalesFile:     "/data/sales_raw.csv",
	}
}

func TestWriteLayout(t *testing.T) {
	var b strings.Builder
	if err := sampleReport().Write(&b, "data_quality_report.txt"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := b.String()

	want := `data_quality_report.txt - ETL Run Summary
Run ID: ab12cd34
[customers_raw.csv] -> customers
 Records processed: 12
 Duplicates removed: 2
 Missing values handled: 3
 Records loaded successfully (customers): 10
[products_raw.csv] -> products
 Records processed: 8
 Duplicates removed: 1
 Missing values handled: 2
 Records loaded successfully (products): 7
[sales_raw.csv] -> orders, order_items
 Records processed: 20
 Duplicates removed: 1
 Missing values handled: 2
 Records loaded successfully (orders): 9
 Records loaded successfully (order_items): 17
 Total records loaded from sales: 26
`
	if got != want {
		t.Errorf("report layout drifted:\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_quality_report.txt")
	if err := sampleReport().WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "data_quality_report.txt - ETL Run Summary") {
		t.Errorf("file header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}
