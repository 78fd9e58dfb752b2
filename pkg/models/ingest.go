package models

// ParsedPurchase is one line item extracted from pasted receipt text.
// Price is in yen; nil when the receipt did not carry one.
type ParsedPurchase struct {
	Title string `json:"title"`
	Price *int   `json:"price"`
	Store string `json:"store"`
}

// IngestEntry is one element of a bulk-add payload.
type IngestEntry struct {
	Title     string `json:"title"`
	Store     string `json:"store,omitempty"`
	OwnedType string `json:"ownedType,omitempty"`
	// Captured opportunistically from receipts; not guaranteed accurate.
	PurchasePrice *int `json:"purchasePrice,omitempty"`
}

// IngestResult aggregates per-batch counters. Counts are at-least-effort:
// a partial failure never rolls back earlier records.
type IngestResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
