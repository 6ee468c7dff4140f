package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

// Principal is the verified identity the session provider supplies per
// request. Verification happens upstream; an empty SubjectID never reaches
// this service through the middleware.
type Principal struct {
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// IdentityService maps principals onto internal user records.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// ResolveOrCreate finds the user for a principal, creating one on first
// contact. Mutable profile fields are patched from the principal on every hit.
func (s *IdentityService) ResolveOrCreate(p Principal) (*models.User, error) {
	if p.SubjectID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	now := time.Now()

	var user models.User
	err := s.db.Where("subject_id = ?", p.SubjectID).First(&user).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) && p.Email != "" {
		// Legacy rows created before the provider issued subject ids are
		// matched by email and adopted.
		err = s.db.Where("email = ? AND (subject_id = '' OR subject_id IS NULL)", p.Email).First(&user).Error
		if err == nil {
			user.SubjectID = p.SubjectID
		}
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "resolve user", err)
		}
		user = models.User{
			SubjectID:    p.SubjectID,
			Name:         displayName(p),
			Email:        p.Email,
			AvatarURL:    p.AvatarURL,
			LastActiveAt: &now,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "create user", err)
		}
		return &user, nil
	}

	if p.Name != "" {
		user.Name = p.Name
	}
	if p.Email != "" {
		user.Email = p.Email
	}
	if p.AvatarURL != "" {
		user.AvatarURL = p.AvatarURL
	}
	user.LastActiveAt = &now
	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "update user", err)
	}
	return &user, nil
}

// GetUser loads a public profile with badges.
func (s *IdentityService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Badges").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load user", err)
	}
	return &user, nil
}

// ProfileUpdate carries optional profile patches; nil fields are untouched.
type ProfileUpdate struct {
	Bio         *string
	BannerURL   *string
	Birthday    *string
	SocialLinks *string
}

// UpdateProfile patches the caller's own profile.
func (s *IdentityService) UpdateProfile(userID uint, upd ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load user", err)
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.BannerURL != nil {
		user.BannerURL = *upd.BannerURL
	}
	if upd.Birthday != nil {
		user.Birthday = *upd.Birthday
	}
	if upd.SocialLinks != nil {
		user.SocialLinks = *upd.SocialLinks
	}
	now := time.Now()
	user.LastActiveAt = &now
	if err := s.db.Save(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "update profile", err)
	}
	return &user, nil
}

// ListUsers returns a directory page, newest first.
func (s *IdentityService) ListUsers(limit int) ([]models.User, error) {
	limit = clampLimit(limit, 50, 200)
	var users []models.User
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list users", err)
	}
	return users, nil
}

func displayName(p Principal) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		if at := strings.IndexByte(p.Email, '@'); at > 0 {
			return p.Email[:at]
		}
		return p.Email
	}
	return "member"
}
