package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

// CommentService owns the one-level comment tree under posts.
type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CommentView is a comment with its author, child count and live reaction
// tallies attached.
type CommentView struct {
	models.Comment
	Author         *AuthorSummary   `json:"author"`
	ReplyCount     int64            `json:"reply_count"`
	ReactionCounts map[string]int64 `json:"reaction_counts"`
}

// Add stores a comment. A reply must name a parent that belongs to the same
// post, otherwise the tree would silently cross post boundaries.
func (s *CommentService) Add(authorID, postID uint, parentID *uint, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}

	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load post", err)
	}

	if parentID != nil {
		var parent models.Comment
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCommentNotFound
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load parent comment", err)
		}
		if parent.PostID != postID {
			return nil, apperrors.InvalidArg("parent comment belongs to a different post")
		}
	}

	comment := models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  utils.Sanitize(content),
		ParentID: parentID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "create comment", err)
	}

	views, err := s.enrich([]models.Comment{comment})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListTopLevel returns a post's root comments oldest first.
func (s *CommentService) ListTopLevel(postID uint, limit int) ([]CommentView, error) {
	limit = clampLimit(limit, 50, 200)

	var post models.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load post", err)
	}

	var comments []models.Comment
	if err := s.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list comments", err)
	}
	return s.enrich(comments)
}

// ListChildren returns the replies under one comment oldest first.
func (s *CommentService) ListChildren(commentID uint, limit int) ([]CommentView, error) {
	limit = clampLimit(limit, 50, 200)

	var parent models.Comment
	if err := s.db.First(&parent, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load comment", err)
	}

	var comments []models.Comment
	if err := s.db.Where("parent_id = ?", commentID).
		Order("created_at ASC").
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list replies", err)
	}
	return s.enrich(comments)
}

func (s *CommentService) enrich(comments []models.Comment) ([]CommentView, error) {
	views := make([]CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(comments))
	authorIDs := make([]uint, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		authorIDs = append(authorIDs, c.AuthorID)
	}

	authors, err := authorSummaries(s.db, utils.UniqueUint(authorIDs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load authors", err)
	}
	replyCounts, err := countsBy(s.db, &models.Comment{}, "parent_id", ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count replies", err)
	}
	reactionCounts, err := reactionCountsBy(s.db, "comment_id", ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count reactions", err)
	}

	for _, c := range comments {
		view := CommentView{
			Comment:        c,
			Author:         authors[c.AuthorID],
			ReplyCount:     replyCounts[c.ID],
			ReactionCounts: reactionCounts[c.ID],
		}
		if view.ReactionCounts == nil {
			view.ReactionCounts = map[string]int64{}
		}
		views = append(views, view)
	}
	return views, nil
}
