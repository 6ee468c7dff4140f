package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// CommentController serves the comment tree under posts.
type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

// AddComment posts a comment or a reply on a post.
func (c *CommentController) AddComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	postID, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid post id")
		return
	}

	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid request payload")
		return
	}

	comment, err := c.comments.Add(userID, postID, req.ParentID, req.Content)
	if err != nil {
		utils.Fail(ctx, err, 40062)
		return
	}
	// Comment counts appear in cached post payloads.
	utils.InvalidateByPrefix(feedCachePrefix)
	utils.Success(ctx, gin.H{"comment": comment})
}

// ListComments returns a post's top-level comments oldest first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid post id")
		return
	}
	comments, err := c.comments.ListTopLevel(postID, parseLimit(ctx))
	if err != nil {
		utils.Fail(ctx, err, 40460)
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// ListReplies returns the replies under one comment.
func (c *CommentController) ListReplies(ctx *gin.Context) {
	commentID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid comment id")
		return
	}
	replies, err := c.comments.ListChildren(commentID, parseLimit(ctx))
	if err != nil {
		utils.Fail(ctx, err, 40461)
		return
	}
	utils.Success(ctx, gin.H{"items": replies})
}
