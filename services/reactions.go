package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

// allowedEmojis is the fixed reaction vocabulary.
var allowedEmojis = map[string]bool{
	"fire":  true,
	"joy":   true,
	"heart": true,
	"clap":  true,
	"eyes":  true,
}

// ReactionTarget picks exactly one reactable entity.
type ReactionTarget struct {
	PostID    uint
	CommentID uint
	AnswerID  uint
}

// ToggleResult reports which way the toggle went.
type ToggleResult struct {
	Added     bool             `json:"added"`
	EmojiName string           `json:"emoji_name"`
	Counts    map[string]int64 `json:"counts"`
}

// ReactionService owns the reaction ledger. A (user, target, emoji) triple is
// a toggle: reacting twice with the same emoji removes the reaction. Answer
// reactions move the answer author's points by answerPoints per toggle, never
// below zero.
type ReactionService struct {
	db           *gorm.DB
	answerPoints int
}

func NewReactionService(db *gorm.DB, answerPoints int) *ReactionService {
	return &ReactionService{db: db, answerPoints: answerPoints}
}

// Toggle flips the (user, target, emoji) reaction and returns the new state.
func (s *ReactionService) Toggle(userID uint, target ReactionTarget, emoji string) (*ToggleResult, error) {
	if !allowedEmojis[emoji] {
		return nil, apperrors.ErrUnknownEmoji
	}
	column, id, err := s.resolveTarget(target)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{EmojiName: emoji}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Reaction
		err := tx.Where(column+" = ? AND user_id = ? AND emoji_name = ?", id, userID, emoji).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			result.Added = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := models.Reaction{UserID: userID, EmojiName: emoji}
			switch column {
			case "post_id":
				reaction.PostID = &id
			case "comment_id":
				reaction.CommentID = &id
			case "answer_id":
				reaction.AnswerID = &id
			}
			if err := tx.Create(&reaction).Error; err != nil {
				return err
			}
			result.Added = true
		default:
			return err
		}

		if column == "answer_id" && s.answerPoints > 0 {
			delta := s.answerPoints
			if !result.Added {
				delta = -delta
			}
			if err := s.adjustAnswerAuthorPoints(tx, id, delta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "toggle reaction", err)
	}

	counts, err := reactionCountsBy(s.db, column, []uint{id})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count reactions", err)
	}
	result.Counts = counts[id]
	if result.Counts == nil {
		result.Counts = map[string]int64{}
	}
	return result, nil
}

// resolveTarget enforces the exactly-one rule and checks the row exists.
func (s *ReactionService) resolveTarget(target ReactionTarget) (string, uint, error) {
	set := 0
	if target.PostID != 0 {
		set++
	}
	if target.CommentID != 0 {
		set++
	}
	if target.AnswerID != 0 {
		set++
	}
	if set != 1 {
		return "", 0, apperrors.ErrAmbiguousTarget
	}

	switch {
	case target.PostID != 0:
		var post models.Post
		if err := s.db.First(&post, target.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", 0, apperrors.ErrPostNotFound
			}
			return "", 0, apperrors.Wrap(apperrors.CodeInternal, "load post", err)
		}
		return "post_id", target.PostID, nil
	case target.CommentID != 0:
		var comment models.Comment
		if err := s.db.First(&comment, target.CommentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", 0, apperrors.ErrCommentNotFound
			}
			return "", 0, apperrors.Wrap(apperrors.CodeInternal, "load comment", err)
		}
		return "comment_id", target.CommentID, nil
	default:
		var answer models.Answer
		if err := s.db.First(&answer, target.AnswerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", 0, apperrors.ErrAnswerNotFound
			}
			return "", 0, apperrors.Wrap(apperrors.CodeInternal, "load answer", err)
		}
		return "answer_id", target.AnswerID, nil
	}
}

func (s *ReactionService) adjustAnswerAuthorPoints(tx *gorm.DB, answerID uint, delta int) error {
	var answer models.Answer
	if err := tx.First(&answer, answerID).Error; err != nil {
		return err
	}
	return adjustPoints(tx, answer.AuthorID, delta)
}

// adjustPoints moves a user's point balance under a row lock, flooring at zero.
func adjustPoints(tx *gorm.DB, userID uint, delta int) error {
	var user models.User
	if err := lockForUpdate(tx).First(&user, userID).Error; err != nil {
		return err
	}
	points := user.Points + delta
	if points < 0 {
		points = 0
	}
	return tx.Model(&user).Update("points", points).Error
}

// reactionCountsBy returns per-target emoji tallies for the given FK column.
func reactionCountsBy(db *gorm.DB, column string, ids []uint) (map[uint]map[string]int64, error) {
	out := map[uint]map[string]int64{}
	if len(ids) == 0 {
		return out, nil
	}
	type row struct {
		RefID uint
		Emoji string
		N     int64
	}
	var rows []row
	if err := db.Model(&models.Reaction{}).
		Select(column+" AS ref_id, emoji_name AS emoji, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column + ", emoji_name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		if out[r.RefID] == nil {
			out[r.RefID] = map[string]int64{}
		}
		out[r.RefID][r.Emoji] = r.N
	}
	return out, nil
}

// viewerReactionsBy returns the emoji names the viewer has active per target.
func viewerReactionsBy(db *gorm.DB, column string, ids []uint, viewerID uint) (map[uint][]string, error) {
	out := map[uint][]string{}
	if len(ids) == 0 || viewerID == 0 {
		return out, nil
	}
	var rows []models.Reaction
	if err := db.Where(column+" IN ? AND user_id = ?", ids, viewerID).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		var key uint
		switch column {
		case "post_id":
			if r.PostID != nil {
				key = *r.PostID
			}
		case "comment_id":
			if r.CommentID != nil {
				key = *r.CommentID
			}
		case "answer_id":
			if r.AnswerID != nil {
				key = *r.AnswerID
			}
		}
		if key != 0 {
			out[key] = append(out[key], r.EmojiName)
		}
	}
	return out, nil
}
