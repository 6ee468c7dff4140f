package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
	"github.com/mireadev/teamlink/utils"
)

// MembershipService owns the group/department membership relations. All
// join/leave operations are idempotent: a second join and a leave by a
// non-member are no-ops.
type MembershipService struct {
	db         *gorm.DB
	badges     *BadgeService
	loungeSlug string
}

func NewMembershipService(db *gorm.DB, badges *BadgeService, loungeSlug string) *MembershipService {
	return &MembershipService{db: db, badges: badges, loungeSlug: loungeSlug}
}

// GroupSummary decorates a group with membership stats for the viewer.
type GroupSummary struct {
	models.Group
	MemberCount int64 `json:"member_count"`
	IsJoined    bool  `json:"is_joined"`
}

// DepartmentSummary decorates a department with its member count.
type DepartmentSummary struct {
	models.Department
	MemberCount int64 `json:"member_count"`
}

// CreateGroup creates a group and auto-joins the creator.
func (s *MembershipService) CreateGroup(creatorID uint, name, description, emoji string) (*GroupSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidArg("group name cannot be empty")
	}
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, apperrors.InvalidArg("group name must contain letters or digits")
	}
	if emoji == "" {
		emoji = "📚"
	}

	group := models.Group{
		Name:        name,
		Slug:        slug,
		Emoji:       emoji,
		Description: utils.Sanitize(description),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Group
		if err := tx.Where("slug = ?", slug).First(&existing).Error; err == nil {
			return apperrors.Conflict("a group with this name already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{GroupID: group.ID, UserID: creatorID}).Error
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "create group", err)
	}
	return &GroupSummary{Group: group, MemberCount: 1, IsJoined: true}, nil
}

// JoinGroup adds the user to a group's member set. Joining the distinguished
// lounge group additionally re-evaluates badges.
func (s *MembershipService) JoinGroup(userID, groupID uint) error {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGroupNotFound
		}
		return apperrors.Wrap(apperrors.CodeInternal, "load group", err)
	}

	member := models.GroupMember{GroupID: groupID, UserID: userID}
	if err := s.db.Where(&models.GroupMember{GroupID: groupID, UserID: userID}).
		FirstOrCreate(&member).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "join group", err)
	}

	if group.Slug == s.loungeSlug && s.badges != nil {
		if _, err := s.badges.Recompute(userID); err != nil {
			utils.Sugar.Warnf("badge recompute after lounge join failed: user=%d err=%v", userID, err)
		}
	}
	return nil
}

// LeaveGroup removes the user from a group's member set; leaving a group the
// user is not in is a no-op.
func (s *MembershipService) LeaveGroup(userID, groupID uint) error {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGroupNotFound
		}
		return apperrors.Wrap(apperrors.CodeInternal, "load group", err)
	}
	if err := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "leave group", err)
	}
	return nil
}

// JoinDepartment moves the user into a department. A user has at most one
// department, so joining a new one leaves the previous one in the same
// transaction instead of silently stranding the old membership row.
func (s *MembershipService) JoinDepartment(userID, departmentID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var dept models.Department
		if err := tx.First(&dept, departmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDepartmentNotFound
			}
			return err
		}

		var user models.User
		if err := lockForUpdate(tx).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return err
		}

		if user.DepartmentID != nil && *user.DepartmentID != departmentID {
			if err := tx.Where("department_id = ? AND user_id = ?", *user.DepartmentID, userID).
				Delete(&models.DepartmentMember{}).Error; err != nil {
				return err
			}
		}

		member := models.DepartmentMember{DepartmentID: departmentID, UserID: userID}
		if err := tx.Where(&models.DepartmentMember{DepartmentID: departmentID, UserID: userID}).
			FirstOrCreate(&member).Error; err != nil {
			return err
		}

		return tx.Model(&user).Update("department_id", departmentID).Error
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return err
		}
		return apperrors.Wrap(apperrors.CodeInternal, "join department", err)
	}
	return nil
}

// LeaveDepartment removes the membership row and clears the user's primary
// department if it matches.
func (s *MembershipService) LeaveDepartment(userID, departmentID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var dept models.Department
		if err := tx.First(&dept, departmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrDepartmentNotFound
			}
			return err
		}
		if err := tx.Where("department_id = ? AND user_id = ?", departmentID, userID).
			Delete(&models.DepartmentMember{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND department_id = ?", userID, departmentID).
			Update("department_id", nil).Error
	})
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeUnknown {
			return err
		}
		return apperrors.Wrap(apperrors.CodeInternal, "leave department", err)
	}
	return nil
}

// Interests returns the ids of the groups the user has joined.
func (s *MembershipService) Interests(userID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load interests", err)
	}
	return ids, nil
}

// ListGroups returns all groups decorated with member counts and the
// viewer's joined flag. viewerID zero means anonymous. joinedOnly restricts
// the result to the viewer's groups.
func (s *MembershipService) ListGroups(viewerID uint, joinedOnly bool) ([]GroupSummary, error) {
	var groups []models.Group
	if err := s.db.Order("created_at ASC").Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list groups", err)
	}

	joined := map[uint]bool{}
	if viewerID != 0 {
		ids, err := s.Interests(viewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			joined[id] = true
		}
	}

	counts, err := s.groupMemberCounts()
	if err != nil {
		return nil, err
	}

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		if joinedOnly && !joined[g.ID] {
			continue
		}
		out = append(out, GroupSummary{Group: g, MemberCount: counts[g.ID], IsJoined: joined[g.ID]})
	}
	return out, nil
}

// GetGroup loads one group with the viewer's joined flag.
func (s *MembershipService) GetGroup(viewerID, groupID uint) (*GroupSummary, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load group", err)
	}
	var count int64
	if err := s.db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count members", err)
	}
	isJoined := false
	if viewerID != 0 {
		var n int64
		if err := s.db.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, viewerID).Count(&n).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "check membership", err)
		}
		isJoined = n > 0
	}
	return &GroupSummary{Group: group, MemberCount: count, IsJoined: isJoined}, nil
}

// ListDepartments returns all departments with member counts.
func (s *MembershipService) ListDepartments() ([]DepartmentSummary, error) {
	var depts []models.Department
	if err := s.db.Order("name ASC").Find(&depts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "list departments", err)
	}

	type row struct {
		DepartmentID uint
		N            int64
	}
	var rows []row
	if err := s.db.Model(&models.DepartmentMember{}).
		Select("department_id, COUNT(*) AS n").
		Group("department_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count members", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.DepartmentID] = r.N
	}

	out := make([]DepartmentSummary, 0, len(depts))
	for _, d := range depts {
		out = append(out, DepartmentSummary{Department: d, MemberCount: counts[d.ID]})
	}
	return out, nil
}

// GetDepartmentBySlug loads one department by its URL slug.
func (s *MembershipService) GetDepartmentBySlug(slug string) (*DepartmentSummary, error) {
	var dept models.Department
	if err := s.db.Where("slug = ?", slug).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load department", err)
	}
	var count int64
	if err := s.db.Model(&models.DepartmentMember{}).
		Where("department_id = ?", dept.ID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count members", err)
	}
	return &DepartmentSummary{Department: dept, MemberCount: count}, nil
}

// GroupMemberIDs returns the user ids in a group, used by the broadcast fan-out.
func (s *MembershipService) GroupMemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "load group members", err)
	}
	return ids, nil
}

func (s *MembershipService) groupMemberCounts() (map[uint]int64, error) {
	type row struct {
		GroupID uint
		N       int64
	}
	var rows []row
	if err := s.db.Model(&models.GroupMember{}).
		Select("group_id, COUNT(*) AS n").
		Group("group_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "count members", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.GroupID] = r.N
	}
	return counts, nil
}
