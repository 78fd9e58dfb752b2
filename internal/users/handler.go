package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gameshelf/internal/auth"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PATCH("/preferences", h.updatePreferences)
}

func (h *Handler) me(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.Repo.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get profile failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type preferencesReq struct {
	SalePriority   *int `json:"salePriority"`
	RatingPriority *int `json:"ratingPriority"`
	TopicPriority  *int `json:"topicPriority"`
}

func (h *Handler) updatePreferences(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req preferencesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	for _, p := range []*int{req.SalePriority, req.RatingPriority, req.TopicPriority} {
		if p != nil && (*p < 1 || *p > 5) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "priorities must be 1-5"})
			return
		}
	}

	profile, err := h.Repo.UpdatePreferences(c.Request.Context(), claims.UserID, PreferencesUpdate{
		SalePriority:   req.SalePriority,
		RatingPriority: req.RatingPriority,
		TopicPriority:  req.TopicPriority,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
