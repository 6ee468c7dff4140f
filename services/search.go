package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

// SearchService runs substring search across posts, people and groups.
// Post results respect the viewer's group visibility.
type SearchService struct {
	db         *gorm.DB
	feed       *FeedService
	membership *MembershipService
}

func NewSearchService(db *gorm.DB, feed *FeedService, membership *MembershipService) *SearchService {
	return &SearchService{db: db, feed: feed, membership: membership}
}

// SearchResults groups one query's hits by entity.
type SearchResults struct {
	Posts  []PostView      `json:"posts"`
	Users  []AuthorSummary `json:"users"`
	Groups []GroupSummary  `json:"groups"`
}

// Search runs a case-insensitive substring query across all three entities.
// An empty query returns empty results rather than everything.
func (s *SearchService) Search(viewerID uint, query string, limit int) (*SearchResults, error) {
	results := &SearchResults{
		Posts:  []PostView{},
		Users:  []AuthorSummary{},
		Groups: []GroupSummary{},
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}
	limit = clampLimit(limit, 20, 50)
	pattern := "%" + strings.ToLower(query) + "%"

	var posts []models.Post
	if err := s.db.Preload("Media").
		Where("LOWER(content) LIKE ?", pattern).
		Order("created_at DESC").
		Limit(limit * feedOverfetchFactor).
		Find(&posts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "search posts", err)
	}
	visible, err := s.feed.filterVisible(posts, viewerID)
	if err != nil {
		return nil, err
	}
	if len(visible) > limit {
		visible = visible[:limit]
	}
	postViews, err := s.feed.enrich(visible, viewerID)
	if err != nil {
		return nil, err
	}
	results.Posts = postViews

	var users []models.User
	if err := s.db.
		Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(bio) LIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "search users", err)
	}
	for i := range users {
		results.Users = append(results.Users, *summarize(&users[i]))
	}

	var groups []models.Group
	if err := s.db.
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "search groups", err)
	}
	if len(groups) > 0 {
		joined := map[uint]bool{}
		if viewerID != 0 {
			ids, err := s.membership.Interests(viewerID)
			if err != nil {
				return nil, err
			}
			for _, id := range ids {
				joined[id] = true
			}
		}
		for _, g := range groups {
			var count int64
			if err := s.db.Model(&models.GroupMember{}).
				Where("group_id = ?", g.ID).Count(&count).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.CodeInternal, "count members", err)
			}
			results.Groups = append(results.Groups, GroupSummary{
				Group:       g,
				MemberCount: count,
				IsJoined:    joined[g.ID],
			})
		}
	}
	return results, nil
}
