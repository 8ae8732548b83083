package handler

import (
	"errors"
	"net/http"

	"replydesk/internal/middleware"
	"replydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReviewHandler interface {
	ListReviews(c *gin.Context)
	FetchReviews(c *gin.Context)
}

type reviewHandler struct {
	reviews service.ReviewService
	log     *logrus.Logger
}

func NewReviewHandler(reviews service.ReviewService, log *logrus.Logger) ReviewHandler {
	return &reviewHandler{reviews: reviews, log: log}
}

// ListReviews handles GET /api/reviews
func (h *reviewHandler) ListReviews(c *gin.Context) {
	userID := middleware.UserID(c)

	reviews, err := h.reviews.List(userID)
	if err != nil {
		h.log.Errorf("Failed to list reviews for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// FetchReviews handles POST /api/reviews/fetch
func (h *reviewHandler) FetchReviews(c *gin.Context) {
	userID := middleware.UserID(c)

	newReviews, err := h.reviews.Ingest(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorf("Failed to ingest reviews for user %s: %v", userID, err)
		if errors.Is(err, service.ErrNotConfigured) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Google account not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "newReviews": newReviews})
}
