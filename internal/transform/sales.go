package transform

import (
	"fleximart/internal/domain"
	"fleximart/internal/extract"
	"fleximart/internal/normalize"
)

// Sales cleans the raw sales rows and joins each surviving line to the
// transformed customer set. The sequence mirrors the load dependencies:
//
//   - ids are normalized; rows lacking a customer or product identifier are
//     dropped (missing-handled);
//   - exact duplicate rows are dropped;
//   - quantity/price are coerced with safe defaults and the subtotal is
//     recomputed, never trusted from input;
//   - each line is joined to customers on the source customer id to attach
//     a canonical email. Lines that match no customer are dangling and are
//     dropped (missing-handled); they must never produce an order.
//
// The returned lines carry only an email identity; durable customer ids are
// the resolver's job.
func Sales(rows []extract.SalesRow, customers []domain.Customer) ([]domain.SalesLine, Stats) {
	stats := Stats{Processed: len(rows)}

	emailBySource := make(map[int64]string, len(customers))
	for _, c := range customers {
		if c.SourceID != nil {
			if _, taken := emailBySource[*c.SourceID]; !taken {
				emailBySource[*c.SourceID] = c.Email
			}
		}
	}

	out := make([]domain.SalesLine, 0, len(rows))
	seen := make(map[uint64]struct{}, len(rows))

	for _, row := range rows {
		custID := normalize.CleanID(row.CustomerID)
		prodID := normalize.CleanID(row.ProductID)
		if custID == nil || prodID == nil {
			stats.MissingHandled++
			continue
		}
		txnID := normalize.CleanID(row.TxnID)

		key := rowKey(fmtID(txnID), row.Date, fmtID(custID), fmtID(prodID), row.Qty, row.UnitPrice)
		if _, dup := seen[key]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		qty, _ := parseInt(row.Qty)
		price, _ := parseFloat(row.UnitPrice)

		line := domain.SalesLine{
			TxnID:          txnID,
			SourceCustomer: custID,
			SourceProduct:  prodID,
			Qty:            qty,
			UnitPrice:      price,
			Subtotal:       float64(qty) * price,
			Date:           normalize.CleanDate(row.Date),
		}

		email, ok := emailBySource[*custID]
		if !ok {
			// Dangling line: the customer id joins to nothing.
			stats.MissingHandled++
			continue
		}
		line.Email = &email
		out = append(out, line)
	}
	return out, stats
}
