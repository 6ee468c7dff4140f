package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

func TestBroadcastFansOutToGroup(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	conversations := NewConversationService(db)
	svc := NewNotificationService(db, membership, conversations, "Come to smoke")

	sender := createUser(t, db, "sender")
	one := createUser(t, db, "one")
	two := createUser(t, db, "two")

	group, err := membership.CreateGroup(sender.ID, "Smokers Lounge", "", "🚬")
	require.NoError(t, err)
	require.NoError(t, membership.JoinGroup(one.ID, group.ID))
	require.NoError(t, membership.JoinGroup(two.ID, group.ID))

	result, err := svc.Broadcast(sender.ID, testLoungeSlug)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Members)
	assert.Equal(t, 2, result.Delivered)

	// Each recipient got a notification row and a direct message; the sender
	// got neither.
	var rows []models.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, n := range rows {
		assert.Equal(t, NotifyCigaretteCall, n.Type)
		assert.NotEqual(t, sender.ID, n.UserID)
		assert.Contains(t, n.Message, "Come to smoke")
	}

	list, err := conversations.ListConversations(one.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "Come to smoke", list[0].LastMessage.Content)
	assert.Equal(t, 1, list[0].UnreadCount)
}

func TestBroadcastResolvesByNameToo(t *testing.T) {
	db := newTestDB(t)
	membership := NewMembershipService(db, nil, testLoungeSlug)
	conversations := NewConversationService(db)
	svc := NewNotificationService(db, membership, conversations, "Come to smoke")

	sender := createUser(t, db, "sender")
	peer := createUser(t, db, "peer")

	group, err := membership.CreateGroup(sender.ID, "Coffee Corner", "", "☕")
	require.NoError(t, err)
	require.NoError(t, membership.JoinGroup(peer.ID, group.ID))

	result, err := svc.Broadcast(sender.ID, "Coffee Corner")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)

	// A display name is slug-normalized before the lookup, so spacing and
	// casing variants resolve too.
	result, err = svc.Broadcast(sender.ID, "coffee corner")
	require.NoError(t, err)
	assert.Equal(t, group.ID, result.GroupID)

	_, err = svc.Broadcast(sender.ID, "no such group")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestNotificationListAndMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db, nil, nil, "")
	user := createUser(t, db, "user")

	require.NoError(t, svc.Notify(user.ID, NotifyBadge, "you earned a badge"))
	require.NoError(t, svc.Notify(user.ID, NotifyAnswer, "new answer on your question"))

	items, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, n := range items {
		assert.False(t, n.Read)
	}

	require.NoError(t, svc.MarkAllRead(user.ID))
	items, err = svc.List(user.ID)
	require.NoError(t, err)
	for _, n := range items {
		assert.True(t, n.Read)
	}
}
