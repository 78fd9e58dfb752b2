package ingest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameshelf/internal/catalog"
	"gameshelf/internal/ingest"
	"gameshelf/internal/library"
	"gameshelf/internal/rawg"
	"gameshelf/pkg/database"
	"gameshelf/pkg/models"
)

type fakeResolver struct {
	failOn  string
	panicOn string
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, title string) (*models.Game, error) {
	f.calls = append(f.calls, title)
	if title == f.panicOn {
		panic("resolver exploded")
	}
	if title == f.failOn {
		return nil, errors.New("resolve failed")
	}
	return &models.Game{ID: "game-" + title, Title: title}, nil
}

type fakeRegistrar struct {
	owned      map[string]bool // gameID|store already registered
	registered []models.UserGame
}

func (f *fakeRegistrar) Register(_ context.Context, userID, gameID, store, ownedType string, purchasePrice *int) (*models.UserGame, error) {
	if f.owned == nil {
		f.owned = map[string]bool{}
	}
	key := gameID + "|" + store
	if f.owned[key] {
		return nil, models.ErrAlreadyOwned
	}
	f.owned[key] = true
	ug := models.UserGame{
		ID: "ug", UserID: userID, GameID: gameID,
		Store: store, OwnedType: ownedType, PurchasePrice: purchasePrice,
	}
	f.registered = append(f.registered, ug)
	return &ug, nil
}

func entriesOf(titles ...string) []models.IngestEntry {
	out := make([]models.IngestEntry, 0, len(titles))
	for _, t := range titles {
		out = append(out, models.IngestEntry{Title: t, Store: models.StoreSteam})
	}
	return out
}

func TestIngestRejectsMissingUser(t *testing.T) {
	c := ingest.NewCoordinator(&fakeResolver{}, &fakeRegistrar{})
	_, err := c.Ingest(context.Background(), "   ", entriesOf("Minecraft"))
	assert.ErrorIs(t, err, ingest.ErrNoUser)
}

func TestIngestRejectsEmptyBatch(t *testing.T) {
	c := ingest.NewCoordinator(&fakeResolver{}, &fakeRegistrar{})
	_, err := c.Ingest(context.Background(), "user-1", nil)
	assert.ErrorIs(t, err, ingest.ErrNoEntries)
}

func TestIngestFaultIsolation(t *testing.T) {
	resolver := &fakeResolver{failOn: "Broken"}
	c := ingest.NewCoordinator(resolver, &fakeRegistrar{})

	res, err := c.Ingest(context.Background(), "user-1",
		entriesOf("One", "Two", "Broken", "Three", "Four"))
	require.NoError(t, err)

	assert.Equal(t, 4, res.Added)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 0, res.Skipped)
	// every sibling after the failure was still processed, in order
	assert.Equal(t, []string{"One", "Two", "Broken", "Three", "Four"}, resolver.calls)
}

func TestIngestPanicCountsAsErrorAndContinues(t *testing.T) {
	resolver := &fakeResolver{panicOn: "Boom"}
	c := ingest.NewCoordinator(resolver, &fakeRegistrar{})

	res, err := c.Ingest(context.Background(), "user-1", entriesOf("One", "Boom", "Two"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Errors)
}

func TestIngestSkipsBlankTitlesWithoutResolving(t *testing.T) {
	resolver := &fakeResolver{}
	c := ingest.NewCoordinator(resolver, &fakeRegistrar{})

	res, err := c.Ingest(context.Background(), "user-1", entriesOf("One", "   ", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, []string{"One"}, resolver.calls)
}

func TestIngestDuplicateOwnershipSkips(t *testing.T) {
	c := ingest.NewCoordinator(&fakeResolver{}, &fakeRegistrar{})

	res, err := c.Ingest(context.Background(), "user-1", entriesOf("Minecraft", "Minecraft"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Skipped)
}

func TestIngestThreadsReceiptPriceThrough(t *testing.T) {
	registrar := &fakeRegistrar{}
	c := ingest.NewCoordinator(&fakeResolver{}, registrar)
	yen := 1500

	res, err := c.Ingest(context.Background(), "user-1", []models.IngestEntry{
		{Title: "バックパック・バトル", Store: models.StoreGooglePlay, PurchasePrice: &yen},
		{Title: "Sighted Only", Store: models.StoreSteam},
		{Title: "Explicit Type", Store: models.StoreSteam, OwnedType: models.OwnedTypeBookmarklet, PurchasePrice: &yen},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)
	require.Len(t, registrar.registered, 3)

	// a priced entry is a purchase unless the caller said otherwise
	priced := registrar.registered[0]
	assert.Equal(t, models.OwnedTypePurchased, priced.OwnedType)
	require.NotNil(t, priced.PurchasePrice)
	assert.Equal(t, 1500, *priced.PurchasePrice)

	assert.Empty(t, registrar.registered[1].OwnedType)
	assert.Nil(t, registrar.registered[1].PurchasePrice)

	assert.Equal(t, models.OwnedTypeBookmarklet, registrar.registered[2].OwnedType)
}

// End-to-end ingestion against real storage: one catalog row per title, one
// ownership row per (game, store), stable across resubmission.
func TestIngestEndToEnd(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ('user-1', 'alice', 'alice@example.com', 'x')
	`)
	require.NoError(t, err)

	catalogRepo := catalog.NewRepo(db)
	libRepo := library.NewRepo(db)
	resolver := catalog.NewResolver(catalogRepo, &staticSearch{}, nil)
	c := ingest.NewCoordinator(resolver, libRepo)
	ctx := context.Background()

	yen := 3960
	batch := []models.IngestEntry{
		{Title: "Minecraft", Store: models.StoreSteam, PurchasePrice: &yen},
		{Title: "Minecraft", Store: models.StoreNintendo},
	}

	res, err := c.Ingest(ctx, "user-1", batch)
	require.NoError(t, err)
	assert.Equal(t, models.IngestResult{Added: 2}, res)

	var games, owned int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&games))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM user_games`).Scan(&owned))
	assert.Equal(t, 1, games)
	assert.Equal(t, 2, owned)

	var storedPrice int
	var ownedType string
	require.NoError(t, db.QueryRow(`
		SELECT purchase_price, owned_type FROM user_games WHERE store = ?
	`, models.StoreSteam).Scan(&storedPrice, &ownedType))
	assert.Equal(t, 3960, storedPrice)
	assert.Equal(t, models.OwnedTypePurchased, ownedType)

	// resubmitting the identical batch adds nothing
	res, err = c.Ingest(ctx, "user-1", batch)
	require.NoError(t, err)
	assert.Equal(t, models.IngestResult{Skipped: 2}, res)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&games))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM user_games`).Scan(&owned))
	assert.Equal(t, 1, games)
	assert.Equal(t, 2, owned)
}

type staticSearch struct{}

func (staticSearch) Search(_ context.Context, query string) ([]rawg.Candidate, error) {
	return []rawg.Candidate{{ID: 1, Name: query, Added: 500, ImageURL: "https://img/x.jpg"}}, nil
}
