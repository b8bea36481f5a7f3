package transform

import (
	"fleximart/internal/domain"
	"fleximart/internal/extract"
	"fleximart/internal/normalize"
)

// Customers cleans the raw customer rows: id, email, phone, and registration
// date are normalized; rows with no usable email get a synthesized
// placeholder (counted as missing-handled); duplicates collapse on canonical
// email keeping the first occurrence in arrival order.
func Customers(rows []extract.CustomerRow, countryCode string) ([]domain.Customer, Stats) {
	stats := Stats{Processed: len(rows)}
	out := make([]domain.Customer, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		id := normalize.CleanID(row.SourceID)
		email := normalize.CanonicalEmail(row.Email)
		if email == nil {
			synth := normalize.SynthesizeEmail(id)
			email = &synth
			stats.MissingHandled++
		}
		if _, dup := seen[*email]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[*email] = struct{}{}
		out = append(out, domain.Customer{
			SourceID:  id,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Email:     *email,
			Phone:     normalize.CleanPhone(row.Phone, countryCode),
			City:      optional(row.City),
			RegDate:   normalize.CleanDate(row.RegDate),
		})
	}
	return out, stats
}

// optional maps an empty raw string to absent.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
