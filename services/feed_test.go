package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

func TestCreatePostValidatesTarget(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	author := createUser(t, db, "author")

	_, err := feed.CreatePost(author.ID, models.GroupTarget(42), "hello", false, nil)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = feed.CreatePost(author.ID, models.GlobalTarget(), "   ", false, nil)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	post, err := feed.CreatePost(author.ID, models.GlobalTarget(), "hello world", false, []MediaInput{
		{URL: "/static/uploads/a.png", Caption: "pic"},
		{URL: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScopeGlobal, post.Scope)
	assert.Len(t, post.Media, 1)
}

func TestFeedGroupVisibility(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	owner := createUser(t, db, "owner")
	member := createUser(t, db, "member")
	outsider := createUser(t, db, "outsider")

	group, err := membership.CreateGroup(owner.ID, "Secret Society", "", "")
	require.NoError(t, err)
	require.NoError(t, membership.JoinGroup(member.ID, group.ID))

	_, err = feed.CreatePost(owner.ID, models.GroupTarget(group.ID), "members only", false, nil)
	require.NoError(t, err)
	_, err = feed.CreatePost(owner.ID, models.GlobalTarget(), "for everyone", false, nil)
	require.NoError(t, err)

	memberFeed, err := feed.ListFeed(member.ID, FeedFilter{})
	require.NoError(t, err)
	assert.Len(t, memberFeed, 2)

	outsiderFeed, err := feed.ListFeed(outsider.ID, FeedFilter{})
	require.NoError(t, err)
	require.Len(t, outsiderFeed, 1)
	assert.Equal(t, "for everyone", outsiderFeed[0].Content)

	anonFeed, err := feed.ListFeed(0, FeedFilter{})
	require.NoError(t, err)
	require.Len(t, anonFeed, 1)
	assert.Equal(t, "for everyone", anonFeed[0].Content)
}

func TestFeedDepartmentVisibility(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	insider := createUser(t, db, "insider")
	outsider := createUser(t, db, "outsider")
	eng := createDepartment(t, db, "Engineering", "engineering")

	require.NoError(t, membership.JoinDepartment(insider.ID, eng.ID))

	_, err := feed.CreatePost(insider.ID, models.DepartmentTarget(eng.ID), "sprint notes", false, nil)
	require.NoError(t, err)

	insiderFeed, err := feed.ListFeed(insider.ID, FeedFilter{})
	require.NoError(t, err)
	assert.Len(t, insiderFeed, 1)

	outsiderFeed, err := feed.ListFeed(outsider.ID, FeedFilter{})
	require.NoError(t, err)
	assert.Empty(t, outsiderFeed)
}

func TestFeedExplicitFilterBypassesPersonalization(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	owner := createUser(t, db, "owner")
	outsider := createUser(t, db, "outsider")

	group, err := membership.CreateGroup(owner.ID, "Open Archive", "", "")
	require.NoError(t, err)
	_, err = feed.CreatePost(owner.ID, models.GroupTarget(group.ID), "archived note", false, nil)
	require.NoError(t, err)

	// An explicit group request returns the group's posts even for non-members.
	result, err := feed.ListFeed(outsider.ID, FeedFilter{GroupID: group.ID})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "archived note", result[0].Content)
}

func TestGetPostHiddenForOutsiders(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	owner := createUser(t, db, "owner")
	outsider := createUser(t, db, "outsider")

	group, err := membership.CreateGroup(owner.ID, "Private Club", "", "")
	require.NoError(t, err)
	post, err := feed.CreatePost(owner.ID, models.GroupTarget(group.ID), "club minutes", false, nil)
	require.NoError(t, err)

	_, err = feed.GetPost(outsider.ID, post.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	seen, err := feed.GetPost(owner.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, seen.ID)
	require.NotNil(t, seen.Group)
	assert.Equal(t, "Private Club", seen.Group.Name)
}

func TestActiveContributorBadgeAfterThreePosts(t *testing.T) {
	db := newTestDB(t)
	badges := NewBadgeService(db, 5, testLoungeSlug)
	membership := NewMembershipService(db, badges, testLoungeSlug)
	feed := NewFeedService(db, membership, badges)
	author := createUser(t, db, "prolific")

	for i := 0; i < 3; i++ {
		_, err := feed.CreatePost(author.ID, models.GlobalTarget(), "post content", false, nil)
		require.NoError(t, err)
	}

	var earned []models.UserBadge
	require.NoError(t, db.Where("user_id = ?", author.ID).Find(&earned).Error)
	names := make([]string, 0, len(earned))
	for _, b := range earned {
		names = append(names, b.Badge)
	}
	assert.Contains(t, names, BadgeActiveContributor)
}
