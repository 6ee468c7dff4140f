package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// ReactionController serves the reaction toggle.
type ReactionController struct {
	reactions *services.ReactionService
}

func NewReactionController(reactions *services.ReactionService) *ReactionController {
	return &ReactionController{reactions: reactions}
}

// Toggle flips an emoji reaction on a post, comment or answer.
func (r *ReactionController) Toggle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		PostID    uint   `json:"post_id"`
		CommentID uint   `json:"comment_id"`
		AnswerID  uint   `json:"answer_id"`
		EmojiName string `json:"emoji_name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	result, err := r.reactions.Toggle(userID, services.ReactionTarget{
		PostID:    req.PostID,
		CommentID: req.CommentID,
		AnswerID:  req.AnswerID,
	}, req.EmojiName)
	if err != nil {
		utils.Fail(ctx, err, 40051)
		return
	}
	// Reaction counts appear in cached post payloads.
	utils.InvalidateByPrefix(feedCachePrefix)
	utils.Success(ctx, result)
}
