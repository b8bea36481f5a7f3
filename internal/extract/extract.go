// Package extract reads the three raw tabular files into transient row
// collections. It owns the column contract: a file missing a required column
// is a fatal extraction error, detected before any cleaning or loading
// happens. Field values are passed through untouched; all cleaning belongs
// to the transform stage.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CustomerRow is one raw customers line, untouched.
type CustomerRow struct {
	SourceID  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	RegDate   string
}

// ProductRow is one raw products line, untouched.
type ProductRow struct {
	SourceID string
	Name     string
	Category string
	Price    string
	Stock    string
}

// SalesRow is one raw sales line, untouched.
type SalesRow struct {
	TxnID      string
	Date       string
	CustomerID string
	ProductID  string
	Qty        string
	UnitPrice  string
}

var (
	customerColumns = []string{"first_name", "last_name", "email", "phone", "city", "registration_date", "customer_id"}
	productColumns  = []string{"product_name", "category", "price", "stock_quantity"}
	salesColumns    = []string{"transaction_id", "transaction_date", "customer_id", "product_id", "quantity", "unit_price"}
)

// header maps column names to field positions for one file.
type header map[string]int

// readTable parses r as CSV and verifies that every required column is
// present, returning the header index and the data rows. Exports sometimes
// arrive with a UTF-8/UTF-16 BOM, so the reader is wrapped in a BOM-stripping
// decoder first. Short rows are tolerated (missing cells read as empty);
// a missing required column is fatal.
func readTable(r io.Reader, name string, required []string) (header, [][]string, error) {
	dec := unicode.UTF8BOM.NewDecoder()
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1 // dirty extracts have ragged rows
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: parse csv: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", name)
	}
	h := header{}
	for i, col := range rows[0] {
		h[col] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s: missing required columns: %v", name, missing)
	}
	return h, rows[1:], nil
}

// cell returns the named column of row, or "" when the row is too short.
func (h header) cell(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Customers reads and contract-checks the customers file.
func Customers(path string) ([]CustomerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open customers file: %w", err)
	}
	defer f.Close()
	return ReadCustomers(f, path)
}

// ReadCustomers parses customer rows from r; name is used in errors.
func ReadCustomers(r io.Reader, name string) ([]CustomerRow, error) {
	h, rows, err := readTable(r, name, customerColumns)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, CustomerRow{
			SourceID:  h.cell(row, "customer_id"),
			FirstName: h.cell(row, "first_name"),
			LastName:  h.cell(row, "last_name"),
			Email:     h.cell(row, "email"),
			Phone:     h.cell(row, "phone"),
			City:      h.cell(row, "city"),
			RegDate:   h.cell(row, "registration_date"),
		})
	}
	return out, nil
}

// Products reads and contract-checks the products file.
func Products(path string) ([]ProductRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open products file: %w", err)
	}
	defer f.Close()
	return ReadProducts(f, path)
}

// ReadProducts parses product rows from r; name is used in errors.
// product_id is optional in the source and read when present.
func ReadProducts(r io.Reader, name string) ([]ProductRow, error) {
	h, rows, err := readTable(r, name, productColumns)
	if err != nil {
		return nil, err
	}
	out := make([]ProductRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProductRow{
			SourceID: h.cell(row, "product_id"),
			Name:     h.cell(row, "product_name"),
			Category: h.cell(row, "category"),
			Price:    h.cell(row, "price"),
			Stock:    h.cell(row, "stock_quantity"),
		})
	}
	return out, nil
}

// Sales reads and contract-checks the sales file.
func Sales(path string) ([]SalesRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales file: %w", err)
	}
	defer f.Close()
	return ReadSales(f, path)
}

// ReadSales parses sales rows from r; name is used in errors.
func ReadSales(r io.Reader, name string) ([]SalesRow, error) {
	h, rows, err := readTable(r, name, salesColumns)
	if err != nil {
		return nil, err
	}
	out := make([]SalesRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, SalesRow{
			TxnID:      h.cell(row, "transaction_id"),
			Date:       h.cell(row, "transaction_date"),
			CustomerID: h.cell(row, "customer_id"),
			ProductID:  h.cell(row, "product_id"),
			Qty:        h.cell(row, "quantity"),
			UnitPrice:  h.cell(row, "unit_price"),
		})
	}
	return out, nil
}
