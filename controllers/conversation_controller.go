package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// ConversationController serves direct messaging.
type ConversationController struct {
	conversations *services.ConversationService
}

func NewConversationController(conversations *services.ConversationService) *ConversationController {
	return &ConversationController{conversations: conversations}
}

// OpenDirect finds or creates the thread with another user.
func (c *ConversationController) OpenDirect(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	conv, err := c.conversations.GetOrCreateDirect(userID, req.UserID)
	if err != nil {
		utils.Fail(ctx, err, 40071)
		return
	}
	utils.Success(ctx, gin.H{"conversation": conv})
}

// ListConversations returns the viewer's threads, most recent first.
func (c *ConversationController) ListConversations(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	convs, err := c.conversations.ListConversations(userID)
	if err != nil {
		utils.Fail(ctx, err, 50070)
		return
	}
	utils.Success(ctx, gin.H{"items": convs})
}

// ListMessages returns one thread's messages oldest first.
func (c *ConversationController) ListMessages(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	convID, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid conversation id")
		return
	}
	messages, err := c.conversations.ListMessages(userID, convID, parseLimit(ctx))
	if err != nil {
		utils.Fail(ctx, err, 40470)
		return
	}
	utils.Success(ctx, gin.H{"items": messages})
}

// SendMessage appends a message to a thread.
func (c *ConversationController) SendMessage(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	convID, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid conversation id")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40074, "invalid request payload")
		return
	}

	message, err := c.conversations.SendMessage(userID, convID, req.Content)
	if err != nil {
		utils.Fail(ctx, err, 40075)
		return
	}
	utils.Success(ctx, gin.H{"message": message})
}

// MarkRead resets the viewer's unread counter for a thread.
func (c *ConversationController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	convID, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40076, "invalid conversation id")
		return
	}
	if err := c.conversations.MarkRead(userID, convID); err != nil {
		utils.Fail(ctx, err, 40471)
		return
	}
	utils.Success(ctx, gin.H{"read": true})
}

// UnreadTotal returns the sum of unread counters for the badge in the UI.
func (c *ConversationController) UnreadTotal(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	total, err := c.conversations.UnreadTotal(userID)
	if err != nil {
		utils.Fail(ctx, err, 50071)
		return
	}
	utils.Success(ctx, gin.H{"unread": total})
}
