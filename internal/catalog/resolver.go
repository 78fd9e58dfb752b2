package catalog

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"gameshelf/internal/lang"
	"gameshelf/internal/rawg"
	"gameshelf/pkg/models"
)

// lowConfidenceAdds is the popularity floor below which a native-script match
// is considered weak enough to warrant a translated re-search.
const lowConfidenceAdds = 50

// placeholderPrice marks an externally resolved row whose storefront price
// has not been looked up yet.
const placeholderPrice = 100

// Searcher is the external catalog capability: a free-text query in, a small
// ranked candidate page out.
type Searcher interface {
	Search(ctx context.Context, query string) ([]rawg.Candidate, error)
}

// Translator converts a title to a neutral lookup language. Fallible and
// optional; only recall depends on it.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Resolver maps free-text titles to canonical catalog rows. It is the only
// component that creates or mutates games.
type Resolver struct {
	Repo      *Repo
	Search    Searcher
	Translate Translator
}

func NewResolver(repo *Repo, search Searcher, translate Translator) *Resolver {
	return &Resolver{Repo: repo, Search: search, Translate: translate}
}

type LookupStatus int

const (
	// LookupNotFound: the external catalog answered and had no candidate.
	LookupNotFound LookupStatus = iota
	// LookupFound: a best candidate was selected.
	LookupFound
	// LookupDegraded: search was unavailable; proceed with no extra metadata.
	LookupDegraded
)

// Lookup is the outcome of an external metadata fetch.
type Lookup struct {
	Status    LookupStatus
	Candidate *rawg.Candidate
}

// Resolve returns the canonical game for a free-text title, creating one if
// needed. It always terminates with a game unless storage itself fails;
// external search and translation failures degrade to "no extra metadata".
func (r *Resolver) Resolve(ctx context.Context, title string) (*models.Game, error) {
	title = strings.TrimSpace(title)

	// 1. Exact user-input match first. Heal placeholder artwork
	// opportunistically but return the row even when refresh yields nothing.
	game, err := r.Repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if game != nil {
		if NeedsHeal(game) {
			lk := r.lookup(ctx, title)
			if lk.Status == LookupFound {
				// external canonical name is authoritative here
				healed, err := r.healIfNeeded(ctx, game, lk.Candidate, true)
				if err != nil {
					return nil, err
				}
				game = healed
			}
		}
		return game, nil
	}

	// 2-4. External resolution of the canonical name.
	lk := r.lookup(ctx, title)
	officialTitle := title
	if lk.Status == LookupFound {
		officialTitle = lk.Candidate.Name
	}

	// 5. Second de-dup check: the canonical name may match a row the raw
	// title did not.
	game, err = r.Repo.FindByTitle(ctx, officialTitle)
	if err != nil {
		return nil, err
	}
	if game != nil {
		if NeedsHeal(game) && lk.Status == LookupFound {
			healed, err := r.healIfNeeded(ctx, game, lk.Candidate, false)
			if err != nil {
				return nil, err
			}
			game = healed
		}
		return game, nil
	}

	// 5/6. Create: candidate metadata when we have it, raw title verbatim
	// with placeholder artwork when we do not.
	g := &models.Game{
		ID:       uuid.NewString(),
		Title:    officialTitle,
		ImageURL: models.PlaceholderImageURL,
	}
	if lk.Status == LookupFound {
		if lk.Candidate.ImageURL != "" {
			g.ImageURL = lk.Candidate.ImageURL
		}
		g.Rating = lk.Candidate.Rating
		g.Price = placeholderPrice
	}

	if err := r.Repo.Create(ctx, g); err != nil {
		// a concurrent request may have created the same title; the UNIQUE
		// constraint on title is the cross-request safety mechanism
		if isUniqueViolation(err) {
			return r.Repo.FindByTitle(ctx, officialTitle)
		}
		return nil, err
	}
	return g, nil
}

// NeedsHeal reports whether a catalog row still carries placeholder or
// missing artwork.
func NeedsHeal(g *models.Game) bool {
	return g.ImageURL == "" || g.ImageURL == models.PlaceholderImageURL
}

// healIfNeeded repairs placeholder artwork in place when the candidate has
// real artwork. Idempotent: once healed, repeat calls write nothing. The
// title is only overwritten when allowTitle is set, i.e. when the candidate
// name is more authoritative than the stored one.
func (r *Resolver) healIfNeeded(ctx context.Context, game *models.Game, cand *rawg.Candidate, allowTitle bool) (*models.Game, error) {
	if cand == nil || cand.ImageURL == "" || !NeedsHeal(game) {
		return game, nil
	}

	title := game.Title
	if allowTitle && cand.Name != "" {
		title = cand.Name
	}

	if err := r.Repo.UpdateMetadata(ctx, game.ID, title, cand.ImageURL, cand.Rating); err != nil {
		return nil, err
	}

	healed := *game
	healed.Title = title
	healed.ImageURL = cand.ImageURL
	healed.Rating = cand.Rating
	return &healed, nil
}

// lookup runs steps 2-4 of resolution: native search, popularity best-match,
// and the translated re-search for weak Japanese-script results. All errors
// degrade; the caller never sees a fault from here.
func (r *Resolver) lookup(ctx context.Context, title string) Lookup {
	if r.Search == nil {
		return Lookup{Status: LookupDegraded}
	}

	results, err := r.Search.Search(ctx, title)
	if err != nil {
		log.Printf("[catalog] search %q failed: %v", title, err)
		return Lookup{Status: LookupDegraded}
	}
	best := bestMatch(results)

	if lang.RequiresTranslation(title) && (best == nil || best.Added < lowConfidenceAdds) {
		best = r.translatedLookup(ctx, title, best)
	}

	if best == nil {
		return Lookup{Status: LookupNotFound}
	}
	return Lookup{Status: LookupFound, Candidate: best}
}

// translatedLookup re-searches with an English rendering of the title and
// keeps the translated best match only when it is strictly more popular.
func (r *Resolver) translatedLookup(ctx context.Context, title string, best *rawg.Candidate) *rawg.Candidate {
	if r.Translate == nil {
		return best
	}

	translated, err := r.Translate.Translate(ctx, title, "ja", "en")
	if err != nil {
		log.Printf("[catalog] translation failed for %q, keeping native results: %v", title, err)
		return best
	}
	log.Printf("[catalog] translated %q to %q for fallback search", title, translated)

	results, err := r.Search.Search(ctx, translated)
	if err != nil {
		log.Printf("[catalog] translated search %q failed: %v", translated, err)
		return best
	}

	if tb := bestMatch(results); tb != nil && tb.Added > addedOf(best) {
		return tb
	}
	return best
}

// bestMatch picks the candidate with the highest add-count so an obscure game
// sharing a name never shadows the well-known one. Absent signal counts as 0.
func bestMatch(results []rawg.Candidate) *rawg.Candidate {
	var best *rawg.Candidate
	for i := range results {
		if best == nil || results[i].Added > best.Added {
			best = &results[i]
		}
	}
	return best
}

func addedOf(c *rawg.Candidate) int {
	if c == nil {
		return 0
	}
	return c.Added
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
