package handler

import (
	"net/http"

	"replydesk/internal/middleware"
	"replydesk/internal/models"
	"replydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SettingsHandler interface {
	GetSettings(c *gin.Context)
	UpdateSettings(c *gin.Context)
}

type settingsHandler struct {
	settings service.SettingsService
	log      *logrus.Logger
}

func NewSettingsHandler(settings service.SettingsService, log *logrus.Logger) SettingsHandler {
	return &settingsHandler{settings: settings, log: log}
}

// SettingsResponse exposes settings without ever echoing sealed material.
type SettingsResponse struct {
	GlobalTone           *string `json:"global_tone"`
	ReplyLanguage        string  `json:"reply_language"`
	HasOpenAIKey         bool    `json:"has_openai_key"`
	GoogleConnected      bool    `json:"google_connected"`
	GoogleConnectedEmail *string `json:"google_connected_email,omitempty"`
}

func toSettingsResponse(s *models.UserSettings) SettingsResponse {
	return SettingsResponse{
		GlobalTone:           s.GlobalTone,
		ReplyLanguage:        s.ReplyLanguage,
		HasOpenAIKey:         s.OpenAIKeyEncrypted != nil && *s.OpenAIKeyEncrypted != "",
		GoogleConnected:      s.Connected(),
		GoogleConnectedEmail: s.ConnectedEmail,
	}
}

// GetSettings handles GET /api/settings
func (h *settingsHandler) GetSettings(c *gin.Context) {
	userID := middleware.UserID(c)

	settings, err := h.settings.Get(userID)
	if err != nil {
		h.log.Errorf("Failed to get settings for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings handles PUT /api/settings
func (h *settingsHandler) UpdateSettings(c *gin.Context) {
	userID := middleware.UserID(c)

	var req service.UpdateSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind settings request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settings.Update(userID, req)
	if err != nil {
		h.log.Errorf("Failed to update settings for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": toSettingsResponse(settings)})
}
