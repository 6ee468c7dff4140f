package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
)

func TestSearchRespectsGroupVisibility(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	svc := NewSearchService(db, feed, membership)

	owner := createUser(t, db, "owner")
	outsider := createUser(t, db, "outsider")

	group, err := membership.CreateGroup(owner.ID, "Insiders", "", "")
	require.NoError(t, err)
	_, err = feed.CreatePost(owner.ID, models.GroupTarget(group.ID), "quarterly budget draft", false, nil)
	require.NoError(t, err)
	_, err = feed.CreatePost(owner.ID, models.GlobalTarget(), "budget townhall announcement", false, nil)
	require.NoError(t, err)

	mine, err := svc.Search(owner.ID, "budget", 0)
	require.NoError(t, err)
	assert.Len(t, mine.Posts, 2)

	theirs, err := svc.Search(outsider.ID, "budget", 0)
	require.NoError(t, err)
	require.Len(t, theirs.Posts, 1)
	assert.Equal(t, "budget townhall announcement", theirs.Posts[0].Content)
}

func TestSearchMatchesUsersAndGroups(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	svc := NewSearchService(db, feed, membership)

	owner := createUser(t, db, "owner")
	hiker := createUser(t, db, "hikerjoe")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", owner.ID).
		Update("bio", "weekend hiking enthusiast").Error)

	_, err := membership.CreateGroup(owner.ID, "Hiking Club", "weekly hikes", "")
	require.NoError(t, err)

	results, err := svc.Search(hiker.ID, "hiking", 0)
	require.NoError(t, err)
	assert.Len(t, results.Users, 1)
	require.Len(t, results.Groups, 1)
	assert.Equal(t, "Hiking Club", results.Groups[0].Name)

	empty, err := svc.Search(hiker.ID, "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Posts)
	assert.Empty(t, empty.Users)
	assert.Empty(t, empty.Groups)
}

func TestSearchMatchesUserByNameSubstring(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	feed := NewFeedService(db, membership, nil)
	svc := NewSearchService(db, feed, membership)

	createUser(t, db, "Marianne")
	viewer := createUser(t, db, "viewer")

	results, err := svc.Search(viewer.ID, "mari", 0)
	require.NoError(t, err)
	require.Len(t, results.Users, 1)
	assert.Equal(t, "Marianne", results.Users[0].Name)
}
