package sync

import "time"

// LibraryEvent announces a single ownership change.
type LibraryEvent struct {
	Type       string    `json:"type"` // "library.update" or "library.delete"
	UserID     string    `json:"user_id"`
	GameID     string    `json:"game_id,omitempty"`
	UserGameID string    `json:"user_game_id,omitempty"`
	Store      string    `json:"store,omitempty"`
	OwnedType  string    `json:"owned_type,omitempty"`
	At         time.Time `json:"at"`
}

// WelcomeEvent greets a client that just attached to the hub.
type WelcomeEvent struct {
	Type      string `json:"type"` // "sync.welcome"
	Transport string `json:"transport"`
	Clients   Stats  `json:"clients"`
}

// BulkImportEvent announces a finished bulk ingestion with its counters.
type BulkImportEvent struct {
	Type    string    `json:"type"` // "library.bulk_import"
	UserID  string    `json:"user_id"`
	Added   int       `json:"added"`
	Skipped int       `json:"skipped"`
	Errors  int       `json:"errors"`
	At      time.Time `json:"at"`
}
