package models

import (
	"errors"
	"time"
)

// ErrAlreadyOwned is the duplicate signal for an ownership registration on a
// (user, game, store) key that already has a row. Callers count it as a
// skip, never as a failure.
var ErrAlreadyOwned = errors.New("game already in library for this store")

// Owned-type markers recorded on an ownership row.
const (
	OwnedTypePurchased   = "PURCHASED"
	OwnedTypeBookmarklet = "BOOKMARKLET_IMPORTED"
)

// UserGame asserts that a user owns a game via one store. Unique per
// (user_id, game_id, store): the same game on two stores is two rows, the
// same game twice on one store is a duplicate.
type UserGame struct {
	ID        string `json:"userGameId"`
	UserID    string `json:"userId"`
	GameID    string `json:"gameId"`
	Store     string `json:"store"`
	OwnedType string `json:"ownedType"`
	// Yen amount the receipt showed at registration time, when known.
	PurchasePrice *int      `json:"purchasePrice,omitempty"`
	CreatedAt     time.Time `json:"addedAt"`
}
