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

type ReplyHandler interface {
	GenerateReply(c *gin.Context)
	RegenerateReply(c *gin.Context)
	ApproveReply(c *gin.Context)
	RejectReply(c *gin.Context)
	SendReply(c *gin.Context)
}

type replyHandler struct {
	replies service.ReplyService
	log     *logrus.Logger
}

func NewReplyHandler(replies service.ReplyService, log *logrus.Logger) ReplyHandler {
	return &replyHandler{replies: replies, log: log}
}

type GenerateReplyRequest struct {
	ReviewID int64 `json:"review_id" binding:"required"`
}

// GenerateReply handles POST /api/replies/generate
func (h *replyHandler) GenerateReply(c *gin.Context) {
	userID := middleware.UserID(c)

	var req GenerateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.replies.Generate(c.Request.Context(), userID, req.ReviewID)
	if err != nil {
		h.handleReplyError(c, userID, "generate", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

// RegenerateReply handles POST /api/replies/regenerate
func (h *replyHandler) RegenerateReply(c *gin.Context) {
	userID := middleware.UserID(c)

	var req GenerateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.replies.Regenerate(c.Request.Context(), userID, req.ReviewID)
	if err != nil {
		h.handleReplyError(c, userID, "regenerate", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

// ApproveReply handles POST /api/replies/:id/approve
func (h *replyHandler) ApproveReply(c *gin.Context) {
	userID := middleware.UserID(c)

	replyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reply id"})
		return
	}

	reply, err := h.replies.Approve(userID, replyID)
	if err != nil {
		h.handleReplyError(c, userID, "approve", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

// RejectReply handles POST /api/replies/:id/reject
func (h *replyHandler) RejectReply(c *gin.Context) {
	userID := middleware.UserID(c)

	replyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reply id"})
		return
	}

	reply, err := h.replies.Reject(userID, replyID)
	if err != nil {
		h.handleReplyError(c, userID, "reject", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

// SendReply handles POST /api/replies/:id/send
func (h *replyHandler) SendReply(c *gin.Context) {
	userID := middleware.UserID(c)

	replyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reply id"})
		return
	}

	reply, err := h.replies.Send(c.Request.Context(), userID, replyID)
	if err != nil {
		h.handleReplyError(c, userID, "send", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

func (h *replyHandler) handleReplyError(c *gin.Context, userID, action string, err error) {
	h.log.Errorf("Failed to %s reply for user %s: %v", action, userID, err)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrReplyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "A reply already exists for this review"})
	case errors.Is(err, service.ErrNotConfigured):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrExternalService):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream service request failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
