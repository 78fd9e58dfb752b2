package library

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gameshelf/internal/auth"
	"gameshelf/internal/catalog"
	"gameshelf/internal/ingest"
	"gameshelf/internal/receipt"
	"gameshelf/internal/sync"
	"gameshelf/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Resolver *catalog.Resolver
	Ingest   *ingest.Coordinator
	Hub      *sync.Hub
}

func NewHandler(repo *Repo, resolver *catalog.Resolver, coordinator *ingest.Coordinator, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Resolver: resolver, Ingest: coordinator, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/library/games", h.listGames)
	rg.POST("/library/add", h.addOne)
	rg.POST("/library/add-bulk", h.addBulk)
	rg.POST("/library/parse-receipt", h.parseReceipt)
	rg.DELETE("/library/:user_game_id", h.remove)
}

// mergedGame is one library entry with per-store duplicates collapsed into a
// platforms list.
type mergedGame struct {
	models.Game
	Store         string    `json:"store"` // first-seen store, kept for older clients
	Platforms     []string  `json:"platforms"`
	OwnedType     string    `json:"ownedType"`
	UserGameID    string    `json:"userGameId"`
	PurchasePrice *int      `json:"purchasePrice,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}

func (h *Handler) listGames(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	owned, err := h.Repo.ListWithGames(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	merged := make([]*mergedGame, 0, len(owned))
	byGame := make(map[string]*mergedGame)
	for _, og := range owned {
		if m, ok := byGame[og.Game.ID]; ok {
			if !containsString(m.Platforms, og.Store) {
				m.Platforms = append(m.Platforms, og.Store)
			}
			continue
		}
		m := &mergedGame{
			Game:          og.Game,
			Store:         og.Store,
			Platforms:     []string{og.Store},
			OwnedType:     og.OwnedType,
			UserGameID:    og.UserGameID,
			PurchasePrice: og.PurchasePrice,
			AddedAt:       og.AddedAt,
		}
		byGame[og.Game.ID] = m
		merged = append(merged, m)
	}

	c.JSON(http.StatusOK, merged)
}

type addReq struct {
	Title         string `json:"title"`
	Store         string `json:"store"`
	OwnedType     string `json:"ownedType"`
	PurchasePrice *int   `json:"purchasePrice"`
}

func (h *Handler) addOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Store == "" || req.OwnedType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, store and ownedType required"})
		return
	}

	game, err := h.Resolver.Resolve(c.Request.Context(), req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}

	ug, err := h.Repo.Register(c.Request.Context(), claims.UserID, game.ID, req.Store, req.OwnedType, req.PurchasePrice)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyOwned) {
			c.JSON(http.StatusConflict, gin.H{"error": "game already in library"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.LibraryEvent{
			Type:       "library.update",
			UserID:     claims.UserID,
			GameID:     game.ID,
			UserGameID: ug.ID,
			Store:      ug.Store,
			OwnedType:  ug.OwnedType,
			At:         time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusCreated, mergedGame{
		Game:          *game,
		Store:         ug.Store,
		Platforms:     []string{ug.Store},
		OwnedType:     ug.OwnedType,
		UserGameID:    ug.ID,
		PurchasePrice: ug.PurchasePrice,
		AddedAt:       ug.CreatedAt,
	})
}

type addBulkReq struct {
	Games []models.IngestEntry `json:"games"`
}

func (h *Handler) addBulk(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addBulkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	results, err := h.Ingest.Ingest(c.Request.Context(), claims.UserID, req.Games)
	if err != nil {
		if errors.Is(err, ingest.ErrNoEntries) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "games must be a non-empty list"})
			return
		}
		if errors.Is(err, ingest.ErrNoUser) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk add failed"})
		return
	}

	if h.Hub != nil {
		ev := sync.BulkImportEvent{
			Type:    "library.bulk_import",
			UserID:  claims.UserID,
			Added:   results.Added,
			Skipped: results.Skipped,
			Errors:  results.Errors,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "一括登録が完了しました",
		"results": results,
	})
}

type parseReceiptReq struct {
	Text string `json:"text"`
}

func (h *Handler) parseReceipt(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req parseReceiptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}

	// No line items is a recoverable condition, not a fault: the client
	// prompts the user to paste the full mail body.
	records := receipt.Parse(req.Text)
	c.JSON(http.StatusOK, gin.H{
		"vendor": receipt.DetectVendor(req.Text),
		"count":  len(records),
		"items":  records,
	})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	userGameID := strings.TrimSpace(c.Param("user_game_id"))
	if userGameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_game_id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, userGameID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := sync.LibraryEvent{
			Type:       "library.delete",
			UserID:     claims.UserID,
			UserGameID: userGameID,
			At:         time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
