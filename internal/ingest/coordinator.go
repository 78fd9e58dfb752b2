package ingest

import (
	"context"
	"errors"
	"log"
	"strings"

	"gameshelf/pkg/models"
)

// Structural batch faults: nothing is processed when these are returned.
var (
	ErrNoUser    = errors.New("ingest: user required")
	ErrNoEntries = errors.New("ingest: games list must not be empty")
)

// Resolver maps a free-text title to its canonical catalog row.
type Resolver interface {
	Resolve(ctx context.Context, title string) (*models.Game, error)
}

// Registrar records ownership, signalling duplicates with
// models.ErrAlreadyOwned.
type Registrar interface {
	Register(ctx context.Context, userID, gameID, store, ownedType string, purchasePrice *int) (*models.UserGame, error)
}

// Coordinator drives a bulk payload through resolution and registration one
// record at a time. Sequential on purpose: resolving the same unseen title
// concurrently within a batch could race both goroutines into creating
// duplicate catalog rows before either insert is visible.
type Coordinator struct {
	Games   Resolver
	Library Registrar
}

func NewCoordinator(games Resolver, library Registrar) *Coordinator {
	return &Coordinator{Games: games, Library: library}
}

// Ingest processes entries strictly left to right and reports aggregate
// counters. A failure inside one record never aborts its siblings; only
// structural violations reject the batch before any processing.
func (c *Coordinator) Ingest(ctx context.Context, userID string, entries []models.IngestEntry) (models.IngestResult, error) {
	var res models.IngestResult

	if strings.TrimSpace(userID) == "" {
		return res, ErrNoUser
	}
	if len(entries) == 0 {
		return res, ErrNoEntries
	}

	for _, entry := range entries {
		c.ingestOne(ctx, userID, entry, &res)
	}
	return res, nil
}

func (c *Coordinator) ingestOne(ctx context.Context, userID string, entry models.IngestEntry, res *models.IngestResult) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[ingest] panic processing %q: %v", entry.Title, p)
			res.Errors++
		}
	}()

	title := strings.TrimSpace(entry.Title)
	if title == "" {
		res.Skipped++
		return
	}

	game, err := c.Games.Resolve(ctx, title)
	if err != nil {
		log.Printf("[ingest] resolve %q failed: %v", title, err)
		res.Errors++
		return
	}

	// receipt evidence with a price is a purchase, not a mere sighting
	ownedType := entry.OwnedType
	if ownedType == "" && entry.PurchasePrice != nil {
		ownedType = models.OwnedTypePurchased
	}

	if _, err := c.Library.Register(ctx, userID, game.ID, entry.Store, ownedType, entry.PurchasePrice); err != nil {
		if errors.Is(err, models.ErrAlreadyOwned) {
			res.Skipped++
			return
		}
		log.Printf("[ingest] register %q failed: %v", title, err)
		res.Errors++
		return
	}
	res.Added++
}
