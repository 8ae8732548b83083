package handler

import (
	"net/http"

	"replydesk/internal/middleware"
	"replydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CycleHandler interface {
	RunCycle(c *gin.Context)
}

type cycleHandler struct {
	cycle service.CycleService
	log   *logrus.Logger
}

func NewCycleHandler(cycle service.CycleService, log *logrus.Logger) CycleHandler {
	return &cycleHandler{cycle: cycle, log: log}
}

// RunCycle handles POST /api/cycle/run
func (h *cycleHandler) RunCycle(c *gin.Context) {
	userID := middleware.UserID(c)

	summary, err := h.cycle.RunCycle(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorf("Cycle failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cycle failed", "summary": summary})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}
