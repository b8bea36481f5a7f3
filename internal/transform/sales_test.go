package transform

import (
	"testing"

	"fleximart/internal/domain"
	"fleximart/internal/extract"
)

func custWithSource(id int64, email string) domain.Customer {
	return domain.Customer{SourceID: &id, Email: email}
}

func TestSalesJoinAndDanglingDrop(t *testing.T) {
	customers := []domain.Customer{
		custWithSource(1, "asha@example.com"),
		custWithSource(2, "vikram@example.com"),
	}
	rows := []extract.SalesRow{
		{TxnID: "100", CustomerID: "1", ProductID: "5", Qty: "2", UnitPrice: "50", Date: "2023-01-10"},
		{TxnID: "101", CustomerID: "99", ProductID: "5", Qty: "1", UnitPrice: "50", Date: "2023-01-10"},
	}
	out, stats := Sales(rows, customers)
	if len(out) != 1 {
		t.Fatalf("got %d lines, want 1 (dangling line dropped)", len(out))
	}
	if out[0].Email == nil || *out[0].Email != "asha@example.com" {
		t.Errorf("joined email = %v", out[0].Email)
	}
	if stats.MissingHandled != 1 {
		t.Errorf("missing handled = %d, want 1", stats.MissingHandled)
	}
}

func TestSalesDropsRowsWithoutIdentifiers(t *testing.T) {
	rows := []extract.SalesRow{
		{TxnID: "100", CustomerID: "", ProductID: "5", Qty: "1", UnitPrice: "10"},
		{TxnID: "100", CustomerID: "1", ProductID: "", Qty: "1", UnitPrice: "10"},
	}
	out, stats := Sales(rows, nil)
	if len(out) != 0 {
		t.Fatalf("got %d lines, want 0", len(out))
	}
	if stats.MissingHandled != 2 {
		t.Errorf("missing handled = %d, want 2", stats.MissingHandled)
	}
}

func TestSalesDedupAndSubtotal(t *testing.T) {
	customers := []domain.Customer{custWithSource(1, "asha@example.com")}
	rows := []extract.SalesRow{
		{TxnID: "100", CustomerID: "1", ProductID: "5", Qty: "2", UnitPrice: "49.50", Date: "2023-01-10"},
		{TxnID: "100", CustomerID: "1", ProductID: "5", Qty: "2", UnitPrice: "49.50", Date: "2023-01-10"},
	}
	out, stats := Sales(rows, customers)
	if len(out) != 1 {
		t.Fatalf("got %d lines, want 1", len(out))
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("duplicates removed = %d, want 1", stats.DuplicatesRemoved)
	}
	if out[0].Subtotal != 99.0 {
		t.Errorf("subtotal = %v, want recomputed 99.0", out[0].Subtotal)
	}
	if out[0].Date == nil || *out[0].Date != "2023-01-10" {
		t.Errorf("date = %v", out[0].Date)
	}
}
