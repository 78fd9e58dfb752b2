package recs

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"gameshelf/internal/auth"
	"gameshelf/internal/rawg"
	"gameshelf/internal/steam"
	"gameshelf/pkg/models"
)

const (
	fetchSize = 40 // over-fetch so filtering owned titles still leaves a page
	pageSize  = 20
)

// TopGamesClient is the external catalog's popularity feed.
type TopGamesClient interface {
	TopGames(ctx context.Context, pageSize int) ([]rawg.Candidate, error)
}

// PriceClient looks up a current storefront price for a title.
type PriceClient interface {
	Lookup(ctx context.Context, title string) (*steam.Price, error)
}

// OwnedTitlesSource lists the lowercased titles a user already owns.
type OwnedTitlesSource interface {
	OwnedTitles(ctx context.Context, userID string) ([]string, error)
}

type Handler struct {
	Library OwnedTitlesSource
	Rawg    TopGamesClient
	Steam   PriceClient
}

func NewHandler(library OwnedTitlesSource, rawgClient TopGamesClient, steamClient PriceClient) *Handler {
	return &Handler{Library: library, Rawg: rawgClient, Steam: steamClient}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
}

type recommendation struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	ImageURL     string   `json:"imageUrl"`
	Price        int      `json:"price"`
	Store        string   `json:"store"`
	Platforms    []string `json:"platforms"`
	Rating       float64  `json:"rating"`
	OwnedType    string   `json:"ownedType"`
	Reasons      []string `json:"reasons"`
	IsOnSale     bool     `json:"isOnSale"`
	DiscountRate int      `json:"discountRate"`
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	ownedTitles, err := h.Library.OwnedTitles(ctx, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	owned := make(map[string]struct{}, len(ownedTitles))
	for _, t := range ownedTitles {
		owned[t] = struct{}{}
	}

	top, err := h.Rawg.TopGames(ctx, fetchSize)
	if err != nil {
		// no credentials or upstream down: an empty feed, not a failure
		log.Printf("[recs] top games unavailable: %v", err)
		c.JSON(http.StatusOK, []recommendation{})
		return
	}

	candidates := make([]rawg.Candidate, 0, pageSize)
	for _, g := range top {
		if _, ok := owned[strings.ToLower(g.Name)]; ok {
			continue
		}
		candidates = append(candidates, g)
		if len(candidates) == pageSize {
			break
		}
	}

	// Price enrichment fans out across distinct already-resolved titles; it
	// reads external state only and never touches the catalog.
	out := make([]recommendation, len(candidates))
	var wg sync.WaitGroup
	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand rawg.Candidate) {
			defer wg.Done()
			out[i] = h.buildRecommendation(ctx, cand)
		}(i, cand)
	}
	wg.Wait()

	c.JSON(http.StatusOK, out)
}

func (h *Handler) buildRecommendation(ctx context.Context, cand rawg.Candidate) recommendation {
	rec := recommendation{
		ID:        fmt.Sprintf("rawg-%d", cand.ID),
		Title:     cand.Name,
		ImageURL:  cand.ImageURL,
		Store:     models.StoreUnknown,
		Platforms: []string{},
		Rating:    cand.Rating,
		OwnedType: "NONE",
	}
	if rec.ImageURL == "" {
		rec.ImageURL = models.PlaceholderImageURL
	}

	if h.Steam != nil {
		price, err := h.Steam.Lookup(ctx, cand.Name)
		if err != nil {
			log.Printf("[recs] steam price for %q unavailable: %v", cand.Name, err)
		} else if price != nil {
			rec.Price = price.Final
			rec.DiscountRate = price.DiscountPercent
			rec.IsOnSale = price.DiscountPercent > 0
			rec.Store = models.StoreSteam
			rec.Platforms = append(rec.Platforms, models.StoreSteam)
		}
	}

	if rec.IsOnSale {
		rec.Reasons = append(rec.Reasons, "今Steamでセール中！")
	}
	switch {
	case cand.Metacritic >= 85:
		rec.Reasons = append(rec.Reasons, "世界的な高評価 (85+)")
	case cand.Rating >= 4.0:
		rec.Reasons = append(rec.Reasons, "プレイヤーから高評価")
	default:
		if !rec.IsOnSale {
			rec.Reasons = append(rec.Reasons, "世界中で大人気")
		}
	}
	return rec
}
