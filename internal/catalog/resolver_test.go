package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameshelf/internal/rawg"
	"gameshelf/pkg/database"
	"gameshelf/pkg/models"
)

type fakeSearch struct {
	results map[string][]rawg.Candidate
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string) ([]rawg.Candidate, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeTranslate struct {
	out string
	err error
}

func (f *fakeTranslate) Translate(_ context.Context, _, _, _ string) (string, error) {
	return f.out, f.err
}

func newTestRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepo(db), db
}

func countGames(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&n))
	return n
}

func TestResolveCreatesWithCandidateMetadata(t *testing.T) {
	repo, db := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"Minecraft": {{ID: 1, Name: "Minecraft", Added: 9000, ImageURL: "https://img/minecraft.jpg", Rating: 4.4}},
	}}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "  Minecraft  ")
	require.NoError(t, err)
	require.NotNil(t, game)

	assert.Equal(t, "Minecraft", game.Title)
	assert.Equal(t, "https://img/minecraft.jpg", game.ImageURL)
	assert.Equal(t, 4.4, game.Rating)
	assert.Equal(t, placeholderPrice, game.Price)
	assert.Equal(t, 1, countGames(t, db))
}

func TestResolveIsIdempotent(t *testing.T) {
	repo, db := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"Minecraft": {{ID: 1, Name: "Minecraft", Added: 9000, ImageURL: "https://img/minecraft.jpg"}},
	}}
	r := NewResolver(repo, search, nil)

	first, err := r.Resolve(context.Background(), "Minecraft")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "Minecraft")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countGames(t, db))
	// the second call hits the exact-match path and never searches again
	assert.Len(t, search.queries, 1)
}

func TestResolveCanonicalNameDedupes(t *testing.T) {
	repo, db := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"minecraft java edition": {{ID: 1, Name: "Minecraft", Added: 9000, ImageURL: "https://img/minecraft.jpg"}},
	}}
	r := NewResolver(repo, search, nil)

	existing := &models.Game{ID: uuid.NewString(), Title: "Minecraft", ImageURL: "https://img/minecraft.jpg"}
	require.NoError(t, repo.Create(context.Background(), existing))

	game, err := r.Resolve(context.Background(), "minecraft java edition")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, game.ID)
	assert.Equal(t, 1, countGames(t, db))
}

func TestResolvePicksMostPopularCandidate(t *testing.T) {
	repo, _ := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"Inside": {
			{ID: 1, Name: "Inside (1996)", Added: 80},
			{ID: 2, Name: "INSIDE", Added: 120, ImageURL: "https://img/inside.jpg"},
			{ID: 3, Name: "Inside Job", Added: 120},
		},
	}}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "Inside")
	require.NoError(t, err)
	// highest add-count wins; on a tie the earlier candidate stands
	assert.Equal(t, "INSIDE", game.Title)
}

func TestResolveTranslatedFallbackWins(t *testing.T) {
	repo, _ := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"ホロウナイト":  {{ID: 1, Name: "Hollow Night Clone", Added: 10}},
		"Hollow Knight": {{ID: 2, Name: "Hollow Knight", Added: 5000, ImageURL: "https://img/hk.jpg"}},
	}}
	r := NewResolver(repo, search, &fakeTranslate{out: "Hollow Knight"})

	game, err := r.Resolve(context.Background(), "ホロウナイト")
	require.NoError(t, err)
	assert.Equal(t, "Hollow Knight", game.Title)
	assert.Equal(t, []string{"ホロウナイト", "Hollow Knight"}, search.queries)
}

func TestResolveTranslatedFallbackNeedsStrictlyMorePopular(t *testing.T) {
	repo, _ := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"ホロウナイト":  {{ID: 1, Name: "ネイティブの一致", Added: 30}},
		"Hollow Knight": {{ID: 2, Name: "Hollow Knight", Added: 30}},
	}}
	r := NewResolver(repo, search, &fakeTranslate{out: "Hollow Knight"})

	game, err := r.Resolve(context.Background(), "ホロウナイト")
	require.NoError(t, err)
	assert.Equal(t, "ネイティブの一致", game.Title)
}

func TestResolveSkipsTranslationForConfidentNativeMatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"ゼルダの伝説": {{ID: 1, Name: "The Legend of Zelda", Added: 8000}},
	}}
	r := NewResolver(repo, search, &fakeTranslate{err: errors.New("translator must not be called")})

	game, err := r.Resolve(context.Background(), "ゼルダの伝説")
	require.NoError(t, err)
	assert.Equal(t, "The Legend of Zelda", game.Title)
	assert.Len(t, search.queries, 1)
}

func TestResolveTranslationFailureKeepsNativeResults(t *testing.T) {
	repo, _ := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"ホロウナイト": {{ID: 1, Name: "ネイティブの一致", Added: 10}},
	}}
	r := NewResolver(repo, search, &fakeTranslate{err: errors.New("translate down")})

	game, err := r.Resolve(context.Background(), "ホロウナイト")
	require.NoError(t, err)
	assert.Equal(t, "ネイティブの一致", game.Title)
}

func TestResolveDegradedCreatesVerbatimRow(t *testing.T) {
	repo, db := newTestRepo(t)
	search := &fakeSearch{err: errors.New("upstream down")}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "Some Obscure Game")
	require.NoError(t, err)

	assert.Equal(t, "Some Obscure Game", game.Title)
	assert.Equal(t, models.PlaceholderImageURL, game.ImageURL)
	assert.Equal(t, 0, game.Price)
	assert.Equal(t, 1, countGames(t, db))
}

func TestResolveNotFoundCreatesVerbatimRow(t *testing.T) {
	repo, _ := newTestRepo(t)
	search := &fakeSearch{results: map[string][]rawg.Candidate{}}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "Homemade Jam Game")
	require.NoError(t, err)
	assert.Equal(t, "Homemade Jam Game", game.Title)
	assert.Equal(t, models.PlaceholderImageURL, game.ImageURL)
}

func TestResolveHealsPlaceholderArtwork(t *testing.T) {
	repo, _ := newTestRepo(t)
	stale := &models.Game{ID: uuid.NewString(), Title: "Celeste", ImageURL: models.PlaceholderImageURL}
	require.NoError(t, repo.Create(context.Background(), stale))

	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"Celeste": {{ID: 1, Name: "Celeste", Added: 4000, ImageURL: "https://img/celeste.jpg", Rating: 4.5}},
	}}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "Celeste")
	require.NoError(t, err)
	assert.Equal(t, stale.ID, game.ID)
	assert.Equal(t, "https://img/celeste.jpg", game.ImageURL)
	assert.Equal(t, 4.5, game.Rating)

	stored, err := repo.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://img/celeste.jpg", stored.ImageURL)
}

func TestResolveDoesNotSearchForHealthyRows(t *testing.T) {
	repo, _ := newTestRepo(t)
	healthy := &models.Game{ID: uuid.NewString(), Title: "Celeste", ImageURL: "https://img/celeste.jpg", Rating: 4.5}
	require.NoError(t, repo.Create(context.Background(), healthy))

	search := &fakeSearch{}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "Celeste")
	require.NoError(t, err)
	assert.Equal(t, healthy.ID, game.ID)
	assert.Equal(t, "https://img/celeste.jpg", game.ImageURL)
	assert.Empty(t, search.queries)
}

func TestResolveHealSurvivesCandidateWithoutArtwork(t *testing.T) {
	repo, _ := newTestRepo(t)
	stale := &models.Game{ID: uuid.NewString(), Title: "Celeste", ImageURL: models.PlaceholderImageURL}
	require.NoError(t, repo.Create(context.Background(), stale))

	search := &fakeSearch{results: map[string][]rawg.Candidate{
		"Celeste": {{ID: 1, Name: "Celeste", Added: 4000}},
	}}
	r := NewResolver(repo, search, nil)

	game, err := r.Resolve(context.Background(), "Celeste")
	require.NoError(t, err)
	assert.Equal(t, stale.ID, game.ID)
	assert.Equal(t, models.PlaceholderImageURL, game.ImageURL)
}

func TestNeedsHeal(t *testing.T) {
	assert.True(t, NeedsHeal(&models.Game{ImageURL: ""}))
	assert.True(t, NeedsHeal(&models.Game{ImageURL: models.PlaceholderImageURL}))
	assert.False(t, NeedsHeal(&models.Game{ImageURL: "https://img/real.jpg"}))
}

func TestBestMatch(t *testing.T) {
	assert.Nil(t, bestMatch(nil))

	got := bestMatch([]rawg.Candidate{
		{ID: 1, Added: 10},
		{ID: 2, Added: 40},
		{ID: 3, Added: 40},
	})
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID)
}
