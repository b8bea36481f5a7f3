// Package domain defines the typed records that flow through the pipeline.
// Raw CSV rows are parsed into these as early as possible; optional columns
// are pointers so "absent" stays distinguishable from zero values.
package domain

// ISODate is the canonical date layout used everywhere downstream.
const ISODate = "2006-01-02"

// Customer is the cleaned customer record. Email is the natural key and is
// never empty after transformation (a placeholder is synthesized when the
// source value is unusable). ID is the store-assigned durable key; it is
// zero until the row exists in the store.
type Customer struct {
	SourceID  *int64 // untrusted id carried from the source extract
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	City      *string
	RegDate   *string // ISO yyyy-mm-dd
	ID        int64
}

// Product is the cleaned product record. Category is never empty ("Unknown"
// sentinel); Price and Stock fall back to 0 on unparseable input.
type Product struct {
	SourceID *int64
	Name     string
	Category string
	Price    float64
	Stock    int
}

// SalesLine is one transaction line. Subtotal is always recomputed from
// Qty*UnitPrice, never trusted from input. Email is attached by joining the
// line to the transformed customer set; CustomerID is filled in by the
// identity resolver and refers to a customer known to exist in the store.
type SalesLine struct {
	TxnID          *int64
	SourceCustomer *int64
	SourceProduct  *int64
	Qty            int
	UnitPrice      float64
	Subtotal       float64
	Date           *string // ISO yyyy-mm-dd
	Email          *string // canonical, set by the customer join
	CustomerID     int64   // durable id, set by the resolver
}

// Order aggregates the sales lines of one transaction. The durable order id
// is the source transaction id; the customer is the resolved customer of the
// transaction's first line.
type Order struct {
	ID         int64
	CustomerID int64
	Date       *string
	Total      float64
	Status     string
}

// OrderItem is one sales line persisted against its order and product.
type OrderItem struct {
	OrderID   int64
	ProductID int64
	Qty       int
	UnitPrice float64
	Subtotal  float64
}
