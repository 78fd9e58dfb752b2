package models

import "time"

// PlaceholderImageURL marks a catalog entry whose artwork was never resolved
// against an external source. Resolution heals these rows in place when real
// artwork turns up later.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1550745165-9bc0b252726f?w=800&q=80"

// Game is the de-duplicated catalog entity. Title is the de-duplication key:
// cross-storefront external IDs are not comparable, so one row exists per
// distinct title.
type Game struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Rating       float64   `json:"rating"`
	Price        int       `json:"price"`
	DiscountRate int       `json:"discountRate"`
	IsOnSale     bool      `json:"isOnSale"`
	CreatedAt    time.Time `json:"createdAt"`
}
