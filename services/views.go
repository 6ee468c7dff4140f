package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mireadev/teamlink/models"
)

// AuthorSummary is the minimal author projection attached to read results.
type AuthorSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ScopeInfo is display info for a post's department or group.
type ScopeInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

func summarize(u *models.User) *AuthorSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &AuthorSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// authorSummaries loads a projection map for the given user ids in one query.
func authorSummaries(db *gorm.DB, ids []uint) (map[uint]*AuthorSummary, error) {
	out := make(map[uint]*AuthorSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Find(&users, ids).Error; err != nil {
		return nil, err
	}
	for i := range users {
		u := users[i]
		out[u.ID] = &AuthorSummary{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
	}
	return out, nil
}

// lockForUpdate applies a row lock on dialects that support it. SQLite, used
// in tests, serializes writes on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
