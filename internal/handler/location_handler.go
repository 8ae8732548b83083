package handler

import (
	"errors"
	"net/http"
	"strconv"

	"replydesk/internal/middleware"
	"replydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type LocationHandler interface {
	ListLocations(c *gin.Context)
	ConnectLocations(c *gin.Context)
	UpdatePolicy(c *gin.Context)
}

type locationHandler struct {
	locations service.LocationService
	log       *logrus.Logger
}

func NewLocationHandler(locations service.LocationService, log *logrus.Logger) LocationHandler {
	return &locationHandler{locations: locations, log: log}
}

// ListLocations handles GET /api/locations
func (h *locationHandler) ListLocations(c *gin.Context) {
	userID := middleware.UserID(c)

	locations, err := h.locations.List(userID)
	if err != nil {
		h.log.Errorf("Failed to list locations for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list locations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// ConnectLocations handles POST /api/locations/connect
func (h *locationHandler) ConnectLocations(c *gin.Context) {
	userID := middleware.UserID(c)

	result, err := h.locations.Connect(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorf("Failed to connect locations for user %s: %v", userID, err)
		switch {
		case errors.Is(err, service.ErrNotConfigured):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Google account not connected"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No business accounts found"})
		case errors.Is(err, service.ErrExternalService):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch business locations"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to connect locations"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"totalLocations": result.TotalLocations,
		"newLocations":   result.NewLocations,
	})
}

type UpdatePolicyRequest struct {
	RequiresApproval *bool   `json:"requires_approval" binding:"required"`
	CustomTone       *string `json:"custom_tone"`
}

// UpdatePolicy handles PUT /api/locations/:id/policy
func (h *locationHandler) UpdatePolicy(c *gin.Context) {
	userID := middleware.UserID(c)

	locationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location id"})
		return
	}

	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.locations.SetPolicy(userID, locationID, *req.RequiresApproval, req.CustomTone); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		h.log.Errorf("Failed to update policy for location %d: %v", locationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update policy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
