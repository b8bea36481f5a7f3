package transform

import (
	"strconv"
	"strings"

	"fleximart/internal/domain"
	"fleximart/internal/extract"
	"fleximart/internal/normalize"
)

// Products cleans the raw product rows. Price and stock are coerced with
// safe defaults on parse failure (0.0 and 0, counted as missing-handled),
// the category falls back to the "Unknown" sentinel, and exact full-row
// duplicates are dropped.
func Products(rows []extract.ProductRow) ([]domain.Product, Stats) {
	stats := Stats{Processed: len(rows)}
	out := make([]domain.Product, 0, len(rows))
	seen := make(map[uint64]struct{}, len(rows))

	for _, row := range rows {
		price, ok := parseFloat(row.Price)
		if !ok {
			stats.MissingHandled++
		}
		stock, ok := parseInt(row.Stock)
		if !ok {
			stats.MissingHandled++
		}
		category := normalize.CleanCategory(row.Category)
		if category == "Unknown" && strings.TrimSpace(row.Category) == "" {
			stats.MissingHandled++
		}

		p := domain.Product{
			SourceID: normalize.CleanID(row.SourceID),
			Name:     row.Name,
			Category: category,
			Price:    price,
			Stock:    stock,
		}
		key := rowKey(fmtID(p.SourceID), p.Name, p.Category,
			strconv.FormatFloat(p.Price, 'g', -1, 64), strconv.Itoa(p.Stock))
		if _, dup := seen[key]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out, stats
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0.0, false
	}
	return f, true
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Stock sometimes arrives as "12.0"; accept the integral part.
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
			return int(f), true
		}
		return 0, false
	}
	return n, true
}
