package dataset

import (
	"time"
)

// Canonical column names every upload is normalized to. The cleaning
// pipeline maps arbitrary CSV headers onto this fixed schema.
const (
	ColCustomerName = "Customer Name"
	ColInvoiceNo    = "InvoiceNo"
	ColStockCode    = "StockCode"
	ColDescription  = "Description"
	ColQuantity     = "Quantity"
	ColInvoiceDate  = "InvoiceDate"
	ColUnitPrice    = "UnitPrice"
	ColCustomerID   = "CustomerID"
	ColCountry      = "Country"
	ColEmail        = "Email"
)

// CanonicalColumns lists the full schema in a fixed order. Fuzzy header
// matching iterates this slice, so the order doubles as the tie-break.
var CanonicalColumns = []string{
	ColCustomerName,
	ColInvoiceNo,
	ColStockCode,
	ColDescription,
	ColQuantity,
	ColInvoiceDate,
	ColUnitPrice,
	ColCustomerID,
	ColCountry,
	ColEmail,
}

// RequiredColumns must all be present after header mapping.
var RequiredColumns = []string{
	ColInvoiceNo,
	ColStockCode,
	ColDescription,
	ColQuantity,
	ColInvoiceDate,
	ColUnitPrice,
}

// IdentifierColumns lists the columns that can identify a customer; at
// least one must survive header mapping.
var IdentifierColumns = []string{ColCustomerID, ColCustomerName}

// Transaction is one cleaned line-item. Negative quantities are returns.
type Transaction struct {
	InvoiceNo   string
	StockCode   string
	Description string
	Quantity    int
	InvoiceDate time.Time
	UnitPrice   float64
	CustomerID  string
	Country     string
	Email       string
	TotalPrice  float64
}

// DropCounts tracks rows discarded during cleaning, by reason.
type DropCounts struct {
	MalformedLines int `json:"malformed_lines"`
	MissingFields  int `json:"missing_fields"`
	BadDates       int `json:"bad_dates"`
	BadNumbers     int `json:"bad_numbers"`
}

func (d DropCounts) Total() int {
	return d.MalformedLines + d.MissingFields + d.BadDates + d.BadNumbers
}

// Table is the canonical transaction table. It is rebuilt fresh per
// ingestion and must be treated as read-only by every analysis; anything
// that needs to reorder or annotate rows works on a Clone.
type Table struct {
	Rows    []Transaction
	Dropped DropCounts
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// MaxInvoiceDate returns the latest timestamp in the table. The second
// return is false for an empty table.
func (t *Table) MaxInvoiceDate() (time.Time, bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, false
	}
	max := t.Rows[0].InvoiceDate
	for _, row := range t.Rows[1:] {
		if row.InvoiceDate.After(max) {
			max = row.InvoiceDate
		}
	}
	return max, true
}

// Clone returns an independently owned copy of the table.
func (t *Table) Clone() *Table {
	rows := make([]Transaction, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Rows: rows, Dropped: t.Dropped}
}
