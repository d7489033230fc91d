package handler

import (
	"net/http"

	"freelance-app/internal/services"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratings services.RatingService
}

func NewRatingHandler(ratings services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

func (h *RatingHandler) RatingsForUser(c *gin.Context) {
	userID := c.Param("userId")
	ratings, err := h.ratings.RatingsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (h *RatingHandler) StatsForUser(c *gin.Context) {
	userID := c.Param("userId")
	stats, err := h.ratings.StatsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
