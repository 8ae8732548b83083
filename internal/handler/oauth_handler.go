package handler

import (
	"errors"
	"net/http"

	"replydesk/internal/middleware"
	"replydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OAuthHandler interface {
	Initiate(c *gin.Context)
	Callback(c *gin.Context)
	Disconnect(c *gin.Context)
}

type oauthHandler struct {
	oauth service.OAuthService
	log   *logrus.Logger
}

func NewOAuthHandler(oauth service.OAuthService, log *logrus.Logger) OAuthHandler {
	return &oauthHandler{oauth: oauth, log: log}
}

// Initiate handles POST /api/oauth/google/initiate
func (h *oauthHandler) Initiate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authUrl": h.oauth.InitiateURL(),
		"message": "OAuth URL generated successfully",
	})
}

type CallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// Callback handles POST /api/oauth/google/callback
func (h *oauthHandler) Callback(c *gin.Context) {
	userID := middleware.UserID(c)

	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := h.oauth.Complete(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.log.Errorf("Failed to complete Google connection for user %s: %v", userID, err)
		if errors.Is(err, service.ErrExternalService) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to exchange authorization code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to connect Google account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"email":   email,
		"message": "Google business account connected successfully",
	})
}

// Disconnect handles POST /api/oauth/google/disconnect
func (h *oauthHandler) Disconnect(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.oauth.Disconnect(userID); err != nil {
		h.log.Errorf("Failed to disconnect Google account for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Google account disconnected"})
}
