package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// NotificationController serves the notification feed and broadcasts.
type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// List returns the viewer's recent notifications.
func (n *NotificationController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	items, err := n.notifications.List(userID)
	if err != nil {
		utils.Fail(ctx, err, 50080)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// MarkAllRead flips every unread notification for the viewer.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if err := n.notifications.MarkAllRead(userID); err != nil {
		utils.Fail(ctx, err, 50081)
		return
	}
	utils.Success(ctx, gin.H{"read": true})
}

// Broadcast fans a call-out to every member of a group.
func (n *NotificationController) Broadcast(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Group string `json:"group" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	result, err := n.notifications.Broadcast(userID, req.Group)
	if err != nil {
		utils.Fail(ctx, err, 40081)
		return
	}
	utils.Success(ctx, result)
}
