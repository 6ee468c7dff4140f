package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

// Badge identifiers as stored on user_badges rows.
const (
	BadgeActiveContributor = "Active Contributor"
	BadgeStreakHero        = "Streak Hero"
	BadgeSmokeBreakCrew    = "Smoke Break Crew"
	BadgeDailyPlayer       = "Daily Player"
)

const activeContributorPosts = 3

// BadgeService derives achievement flags from fresh signals. Recompute
// replaces the stored set, so it is idempotent and safe to trigger from any
// point-producing event.
type BadgeService struct {
	db              *gorm.DB
	streakThreshold int
	loungeSlug      string
}

func NewBadgeService(db *gorm.DB, streakThreshold int, loungeSlug string) *BadgeService {
	return &BadgeService{db: db, streakThreshold: streakThreshold, loungeSlug: loungeSlug}
}

// Recompute reads the signals and replaces the user's badge rows.
func (s *BadgeService) Recompute(userID uint) ([]string, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load user", err)
	}

	var postCount int64
	if err := s.db.Model(&models.Post{}).Where("author_id = ?", userID).Count(&postCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count posts", err)
	}

	var streak models.Streak
	hasStreakRow := true
	if err := s.db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load streak", err)
		}
		hasStreakRow = false
	}

	inLounge := false
	if s.loungeSlug != "" {
		var lounge models.Group
		if err := s.db.Where("slug = ?", s.loungeSlug).First(&lounge).Error; err == nil {
			var n int64
			if err := s.db.Model(&models.GroupMember{}).
				Where("group_id = ? AND user_id = ?", lounge.ID, userID).
				Count(&n).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, "check lounge membership", err)
			}
			inLounge = n > 0
		}
	}

	var badges []string
	if postCount >= activeContributorPosts {
		badges = append(badges, BadgeActiveContributor)
	}
	if hasStreakRow {
		badges = append(badges, BadgeDailyPlayer)
		if streak.CurrentStreak > s.streakThreshold {
			badges = append(badges, BadgeStreakHero)
		}
	}
	if inLounge {
		badges = append(badges, BadgeSmokeBreakCrew)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserBadge{}).Error; err != nil {
			return err
		}
		for _, b := range badges {
			if err := tx.Create(&models.UserBadge{UserID: userID, Badge: b}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "store badges", err)
	}
	return badges, nil
}
