package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

const testLoungeSlug = "smokers-lounge"

func TestCreateGroupSlugAndAutoJoin(t *testing.T) {
	db := newTestDB(t)
	badges := NewBadgeService(db, 5, testLoungeSlug)
	svc := NewMembershipService(db, badges, testLoungeSlug)
	user := createUser(t, db, "alice")

	group, err := svc.CreateGroup(user.ID, "Board Game Night!", "weekly games", "")
	require.NoError(t, err)
	assert.Equal(t, "board-game-night", group.Slug)
	assert.Equal(t, "📚", group.Emoji)
	assert.True(t, group.IsJoined)
	assert.EqualValues(t, 1, group.MemberCount)

	_, err = svc.CreateGroup(user.ID, "Board Game Night!", "dup", "")
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestJoinGroupIdempotent(t *testing.T) {
	db := newTestDB(t)
	badges := NewBadgeService(db, 5, testLoungeSlug)
	svc := NewMembershipService(db, badges, testLoungeSlug)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")

	group, err := svc.CreateGroup(owner.ID, "Runners", "", "🏃")
	require.NoError(t, err)

	require.NoError(t, svc.JoinGroup(member.ID, group.ID))
	require.NoError(t, svc.JoinGroup(member.ID, group.ID))

	var count int64
	require.NoError(t, db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", group.ID, member.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLeaveGroupNonMemberIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil, testLoungeSlug)
	owner := createUser(t, db, "owner")
	outsider := createUser(t, db, "outsider")

	group, err := svc.CreateGroup(owner.ID, "Readers", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveGroup(outsider.ID, group.ID))

	err = svc.LeaveGroup(outsider.ID, 999)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestJoinDepartmentLeavesPrevious(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil, testLoungeSlug)
	user := createUser(t, db, "mover")
	eng := createDepartment(t, db, "Engineering", "engineering")
	sales := createDepartment(t, db, "Sales", "sales")

	require.NoError(t, svc.JoinDepartment(user.ID, eng.ID))
	require.NoError(t, svc.JoinDepartment(user.ID, sales.ID))

	var memberships []models.DepartmentMember
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&memberships).Error)
	require.Len(t, memberships, 1)
	assert.Equal(t, sales.ID, memberships[0].DepartmentID)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	require.NotNil(t, fresh.DepartmentID)
	assert.Equal(t, sales.ID, *fresh.DepartmentID)
}

func TestLeaveDepartmentClearsPrimary(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil, testLoungeSlug)
	user := createUser(t, db, "leaver")
	eng := createDepartment(t, db, "Engineering", "engineering")

	require.NoError(t, svc.JoinDepartment(user.ID, eng.ID))
	require.NoError(t, svc.LeaveDepartment(user.ID, eng.ID))

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Nil(t, fresh.DepartmentID)
}

func TestLoungeJoinGrantsBadge(t *testing.T) {
	db := newTestDB(t)
	badges := NewBadgeService(db, 5, testLoungeSlug)
	svc := NewMembershipService(db, badges, testLoungeSlug)
	owner := createUser(t, db, "founder")
	smoker := createUser(t, db, "smoker")

	lounge, err := svc.CreateGroup(owner.ID, "Smokers Lounge", "", "🚬")
	require.NoError(t, err)
	require.Equal(t, testLoungeSlug, lounge.Slug)

	require.NoError(t, svc.JoinGroup(smoker.ID, lounge.ID))

	var earned []models.UserBadge
	require.NoError(t, db.Where("user_id = ?", smoker.ID).Find(&earned).Error)
	names := make([]string, 0, len(earned))
	for _, b := range earned {
		names = append(names, b.Badge)
	}
	assert.Contains(t, names, BadgeSmokeBreakCrew)
}

func TestListGroupsJoinedFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil, testLoungeSlug)
	owner := createUser(t, db, "owner")
	viewer := createUser(t, db, "viewer")

	a, err := svc.CreateGroup(owner.ID, "Alpha", "", "")
	require.NoError(t, err)
	_, err = svc.CreateGroup(owner.ID, "Beta", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.JoinGroup(viewer.ID, a.ID))

	all, err := svc.ListGroups(viewer.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	joined, err := svc.ListGroups(viewer.ID, true)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "Alpha", joined[0].Name)
	assert.True(t, joined[0].IsJoined)
}
