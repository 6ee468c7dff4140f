package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

const feedOverfetchFactor = 5

// FeedService owns post creation and the personalized feed read path.
type FeedService struct {
	db         *gorm.DB
	membership *MembershipService
	badges     *BadgeService
}

func NewFeedService(db *gorm.DB, membership *MembershipService, badges *BadgeService) *FeedService {
	return &FeedService{db: db, membership: membership, badges: badges}
}

// PostView is the enriched read projection of a post.
type PostView struct {
	models.Post
	Author         *AuthorSummary   `json:"author"`
	Department     *ScopeInfo       `json:"department,omitempty"`
	Group          *ScopeInfo       `json:"group,omitempty"`
	CommentCount   int64            `json:"comment_count"`
	ReactionCounts map[string]int64 `json:"reaction_counts"`
	MyReactions    []string         `json:"my_reactions,omitempty"`
}

// MediaInput is one attachment on a new post.
type MediaInput struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// FeedFilter narrows the feed read. A non-zero DepartmentID or GroupID is an
// explicit audience request and bypasses personalization entirely.
type FeedFilter struct {
	DepartmentID uint
	GroupID      uint
	ShowcaseOnly bool
	Limit        int
}

// CreatePost validates the target against real rows, sanitizes content and
// stores the post with its media in one transaction.
func (s *FeedService) CreatePost(authorID uint, target models.Target, content string, isShowcase bool, media []MediaInput) (*PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}

	switch target.Kind {
	case models.TargetGlobal:
	case models.TargetDepartment:
		var dept models.Department
		if err := s.db.First(&dept, target.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrDepartmentNotFound
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load department", err)
		}
	case models.TargetGroup:
		var group models.Group
		if err := s.db.First(&group, target.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrGroupNotFound
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load group", err)
		}
	default:
		return nil, apperrors.InvalidArg("unknown post target")
	}

	post := models.Post{
		AuthorID:   authorID,
		Content:    utils.Sanitize(content),
		IsShowcase: isShowcase,
	}
	post.SetTarget(target)
	for _, m := range media {
		if strings.TrimSpace(m.URL) == "" {
			continue
		}
		post.Media = append(post.Media, models.PostMedia{URL: m.URL, Caption: utils.Sanitize(m.Caption)})
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "create post", err)
	}

	if s.badges != nil {
		if _, err := s.badges.Recompute(authorID); err != nil {
			utils.Sugar.Warnf("badge recompute after post failed: user=%d err=%v", authorID, err)
		}
	}

	views, err := s.enrich([]models.Post{post}, authorID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListFeed returns visible posts, newest first. With an explicit department or
// group filter the result is exactly that audience. Otherwise the query
// overfetches and keeps global posts plus posts scoped to the viewer's own
// department and joined groups; an anonymous viewer sees global posts only.
func (s *FeedService) ListFeed(viewerID uint, filter FeedFilter) ([]PostView, error) {
	limit := clampLimit(filter.Limit, 20, 100)

	q := s.db.Model(&models.Post{}).Preload("Media").Order("created_at DESC")
	if filter.ShowcaseOnly {
		q = q.Where("is_showcase = ?", true)
	}

	if filter.DepartmentID != 0 {
		q = q.Where("scope = ? AND department_id = ?", models.ScopeDepartment, filter.DepartmentID)
	} else if filter.GroupID != 0 {
		q = q.Where("scope = ? AND group_id = ?", models.ScopeGroup, filter.GroupID)
	} else {
		q = q.Limit(limit * feedOverfetchFactor)
	}
	if filter.DepartmentID != 0 || filter.GroupID != 0 {
		q = q.Limit(limit)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load feed", err)
	}

	if filter.DepartmentID == 0 && filter.GroupID == 0 {
		visible, err := s.filterVisible(posts, viewerID)
		if err != nil {
			return nil, err
		}
		if len(visible) > limit {
			visible = visible[:limit]
		}
		posts = visible
	}

	return s.enrich(posts, viewerID)
}

// GetPost loads one post if the viewer may see it.
func (s *FeedService) GetPost(viewerID, postID uint) (*PostView, error) {
	var post models.Post
	if err := s.db.Preload("Media").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load post", err)
	}

	visible, err := s.filterVisible([]models.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	if len(visible) == 0 {
		return nil, apperrors.ErrPostNotFound
	}

	views, err := s.enrich(visible, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// filterVisible applies the personalization rule: global posts always pass,
// department posts pass for members of that department, group posts pass for
// joined groups. Anonymous viewers keep global posts only.
func (s *FeedService) filterVisible(posts []models.Post, viewerID uint) ([]models.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	var deptID uint
	joined := map[uint]bool{}
	if viewerID != 0 {
		var user models.User
		if err := s.db.First(&user, viewerID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Wrap(apperrors.CodeInternal, "load viewer", err)
			}
		} else if user.DepartmentID != nil {
			deptID = *user.DepartmentID
		}
		ids, err := s.membership.Interests(viewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			joined[id] = true
		}
	}

	out := posts[:0]
	for _, p := range posts {
		switch p.Scope {
		case models.ScopeGlobal:
			out = append(out, p)
		case models.ScopeDepartment:
			if p.DepartmentID != nil && *p.DepartmentID == deptID && deptID != 0 {
				out = append(out, p)
			}
		case models.ScopeGroup:
			if p.GroupID != nil && joined[*p.GroupID] {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// enrich attaches authors, scope labels, comment counts and reaction data.
func (s *FeedService) enrich(posts []models.Post, viewerID uint) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint, 0, len(posts))
	authorIDs := make([]uint, 0, len(posts))
	deptIDs := make([]uint, 0)
	groupIDs := make([]uint, 0)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
		if p.DepartmentID != nil {
			deptIDs = append(deptIDs, *p.DepartmentID)
		}
		if p.GroupID != nil {
			groupIDs = append(groupIDs, *p.GroupID)
		}
	}

	authors, err := authorSummaries(s.db, utils.UniqueUint(authorIDs))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load authors", err)
	}

	depts := map[uint]*ScopeInfo{}
	if len(deptIDs) > 0 {
		var rows []models.Department
		if err := s.db.Find(&rows, utils.UniqueUint(deptIDs)).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load departments", err)
		}
		for _, d := range rows {
			depts[d.ID] = &ScopeInfo{ID: d.ID, Name: d.Name, Emoji: d.Emoji}
		}
	}
	groups := map[uint]*ScopeInfo{}
	if len(groupIDs) > 0 {
		var rows []models.Group
		if err := s.db.Find(&rows, utils.UniqueUint(groupIDs)).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "load groups", err)
		}
		for _, g := range rows {
			groups[g.ID] = &ScopeInfo{ID: g.ID, Name: g.Name, Emoji: g.Emoji}
		}
	}

	commentCounts, err := countsBy(s.db, &models.Comment{}, "post_id", postIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count comments", err)
	}
	reactionCounts, err := reactionCountsBy(s.db, "post_id", postIDs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count reactions", err)
	}
	mine, err := viewerReactionsBy(s.db, "post_id", postIDs, viewerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load viewer reactions", err)
	}

	for _, p := range posts {
		view := PostView{
			Post:           p,
			Author:         authors[p.AuthorID],
			CommentCount:   commentCounts[p.ID],
			ReactionCounts: reactionCounts[p.ID],
			MyReactions:    mine[p.ID],
		}
		if view.ReactionCounts == nil {
			view.ReactionCounts = map[string]int64{}
		}
		if p.DepartmentID != nil {
			view.Department = depts[*p.DepartmentID]
		}
		if p.GroupID != nil {
			view.Group = groups[*p.GroupID]
		}
		views = append(views, view)
	}
	return views, nil
}

// countsBy groups row counts of model by the given FK column.
func countsBy(db *gorm.DB, model interface{}, column string, ids []uint) (map[uint]int64, error) {
	out := map[uint]int64{}
	if len(ids) == 0 {
		return out, nil
	}
	type row struct {
		RefID uint
		N     int64
	}
	var rows []row
	if err := db.Model(model).
		Select(column+" AS ref_id, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.RefID] = r.N
	}
	return out, nil
}
