package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

func TestDirectConversationDedup(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	first, err := svc.GetOrCreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)

	// Same pair, either initiator, always lands on the same thread.
	again, err := svc.GetOrCreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	reversed, err := svc.GetOrCreateDirect(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reversed.ID)

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDirectConversationGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)
	alice := createUser(t, db, "alice")

	_, err := svc.GetOrCreateDirect(alice.ID, alice.ID)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = svc.GetOrCreateDirect(alice.ID, 404)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestSendMessageMovesUnreadCounters(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	conv, err := svc.GetOrCreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := svc.SendMessage(alice.ID, conv.ID, "hey bob")
	require.NoError(t, err)
	assert.Contains(t, msg.ReadBy, alice.ID)

	var bobSide models.ConversationMember
	require.NoError(t, db.Where("conversation_id = ? AND user_id = ?", conv.ID, bob.ID).
		First(&bobSide).Error)
	assert.Equal(t, 1, bobSide.UnreadCount)

	var aliceSide models.ConversationMember
	require.NoError(t, db.Where("conversation_id = ? AND user_id = ?", conv.ID, alice.ID).
		First(&aliceSide).Error)
	assert.Equal(t, 0, aliceSide.UnreadCount)

	var fresh models.Conversation
	require.NoError(t, db.First(&fresh, conv.ID).Error)
	assert.NotNil(t, fresh.LastMessageAt)
}

func TestMarkReadResetsAndBackfills(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	conv, err := svc.GetOrCreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(alice.ID, conv.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(alice.ID, conv.ID, "two")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(bob.ID, conv.ID))

	var bobSide models.ConversationMember
	require.NoError(t, db.Where("conversation_id = ? AND user_id = ?", conv.ID, bob.ID).
		First(&bobSide).Error)
	assert.Equal(t, 0, bobSide.UnreadCount)
	assert.NotNil(t, bobSide.LastReadAt)

	messages, err := svc.ListMessages(bob.ID, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	for _, m := range messages {
		assert.Contains(t, m.ReadBy, alice.ID)
		assert.Contains(t, m.ReadBy, bob.ID)
	}

	// A second mark is a no-op, not a duplicate receipt.
	require.NoError(t, svc.MarkRead(bob.ID, conv.ID))
	var receipts int64
	require.NoError(t, db.Model(&models.MessageRead{}).Count(&receipts).Error)
	assert.EqualValues(t, 4, receipts)
}

func TestConversationMembershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	eve := createUser(t, db, "eve")

	conv, err := svc.GetOrCreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.ListMessages(eve.ID, conv.ID, 0)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))

	_, err = svc.SendMessage(eve.ID, conv.ID, "let me in")
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))

	_, err = svc.ListMessages(alice.ID, 404, 0)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestListConversationsOrderAndUnreadTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewConversationService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	withBob, err := svc.GetOrCreateDirect(alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := svc.GetOrCreateDirect(alice.ID, carol.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(bob.ID, withBob.ID, "from bob")
	require.NoError(t, err)
	_, err = svc.SendMessage(carol.ID, withCarol.ID, "from carol")
	require.NoError(t, err)
	_, err = svc.SendMessage(carol.ID, withCarol.ID, "again")
	require.NoError(t, err)

	list, err := svc.ListConversations(alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, withCarol.ID, list[0].ID)
	require.NotNil(t, list[0].OtherUser)
	assert.Equal(t, "carol", list[0].OtherUser.Name)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "again", list[0].LastMessage.Content)
	assert.Equal(t, 2, list[0].UnreadCount)

	total, err := svc.UnreadTotal(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
