package transform

import (
	"testing"

	"fleximart/internal/extract"
)

func TestProductsCoercionDefaults(t *testing.T) {
	rows := []extract.ProductRow{
		{SourceID: "1", Name: "USB Cable", Category: "electronics", Price: "", Stock: "12.0"},
		{SourceID: "2", Name: "Mug", Category: "  ", Price: "abc", Stock: ""},
	}
	out, stats := Products(rows)
	if len(out) != 2 {
		t.Fatalf("got %d products, want 2", len(out))
	}
	if out[0].Price != 0.0 || out[0].Stock != 12 {
		t.Errorf("row 0 = price %v stock %v, want 0.0 / 12", out[0].Price, out[0].Stock)
	}
	if out[0].Category != "Electronics" {
		t.Errorf("category = %q, want Electronics", out[0].Category)
	}
	if out[1].Price != 0.0 || out[1].Stock != 0 {
		t.Errorf("row 1 = price %v stock %v, want zero defaults", out[1].Price, out[1].Stock)
	}
	if out[1].Category != "Unknown" {
		t.Errorf("blank category = %q, want Unknown", out[1].Category)
	}
	// row 0: bad price. row 1: bad price, bad stock, blank category.
	if stats.MissingHandled != 4 {
		t.Errorf("missing handled = %d, want 4", stats.MissingHandled)
	}
}

func TestProductsExactRowDedup(t *testing.T) {
	rows := []extract.ProductRow{
		{SourceID: "10", Name: "Lamp", Category: "Home", Price: "499.00", Stock: "3"},
		{SourceID: "10", Name: "Lamp", Category: "Home", Price: "499.00", Stock: "3"},
		{SourceID: "10", Name: "Lamp", Category: "Home", Price: "499.00", Stock: "4"},
	}
	out, stats := Products(rows)
	if len(out) != 2 {
		t.Fatalf("got %d products, want 2", len(out))
	}
	if stats.DuplicatesRemoved != 1 {
		t.Errorf("duplicates removed = %d, want 1", stats.DuplicatesRemoved)
	}
}
