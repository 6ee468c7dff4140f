package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

func TestCommentTree(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db)
	author := createUser(t, db, "author")
	replier := createUser(t, db, "replier")

	post := models.Post{AuthorID: author.ID, Scope: models.ScopeGlobal, Content: "topic"}
	require.NoError(t, db.Create(&post).Error)

	first, err := svc.Add(author.ID, post.ID, nil, "first")
	require.NoError(t, err)
	// sqlite timestamps have second precision in some drivers, space them out
	time.Sleep(10 * time.Millisecond)
	second, err := svc.Add(replier.ID, post.ID, nil, "second")
	require.NoError(t, err)
	_, err = svc.Add(replier.ID, post.ID, &first.ID, "a reply")
	require.NoError(t, err)

	top, err := svc.ListTopLevel(post.ID, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, first.ID, top[0].ID)
	assert.Equal(t, second.ID, top[1].ID)
	assert.EqualValues(t, 1, top[0].ReplyCount)
	assert.EqualValues(t, 0, top[1].ReplyCount)

	replies, err := svc.ListChildren(first.ID, 0)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "a reply", replies[0].Content)
	require.NotNil(t, replies[0].Author)
	assert.Equal(t, "replier", replies[0].Author.Name)
}

func TestCommentListingsCarryReactionCounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db)
	reactions := NewReactionService(db, 0)
	author := createUser(t, db, "author")
	fan := createUser(t, db, "fan")

	post := models.Post{AuthorID: author.ID, Scope: models.ScopeGlobal, Content: "topic"}
	require.NoError(t, db.Create(&post).Error)

	comment, err := svc.Add(author.ID, post.ID, nil, "hot take")
	require.NoError(t, err)
	reply, err := svc.Add(fan.ID, post.ID, &comment.ID, "agreed")
	require.NoError(t, err)

	_, err = reactions.Toggle(fan.ID, ReactionTarget{CommentID: comment.ID}, "fire")
	require.NoError(t, err)
	_, err = reactions.Toggle(author.ID, ReactionTarget{CommentID: comment.ID}, "fire")
	require.NoError(t, err)
	_, err = reactions.Toggle(author.ID, ReactionTarget{CommentID: reply.ID}, "heart")
	require.NoError(t, err)

	top, err := svc.ListTopLevel(post.ID, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.EqualValues(t, 2, top[0].ReactionCounts["fire"])

	replies, err := svc.ListChildren(comment.ID, 0)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.EqualValues(t, 1, replies[0].ReactionCounts["heart"])

	// Unreacted comments still serialize an empty map, not null.
	bare, err := svc.Add(fan.ID, post.ID, nil, "no takers")
	require.NoError(t, err)
	assert.NotNil(t, bare.ReactionCounts)
	assert.Empty(t, bare.ReactionCounts)
}

func TestCommentParentMustShareAPost(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db)
	author := createUser(t, db, "author")

	postA := models.Post{AuthorID: author.ID, Scope: models.ScopeGlobal, Content: "a"}
	postB := models.Post{AuthorID: author.ID, Scope: models.ScopeGlobal, Content: "b"}
	require.NoError(t, db.Create(&postA).Error)
	require.NoError(t, db.Create(&postB).Error)

	parent, err := svc.Add(author.ID, postA.ID, nil, "root")
	require.NoError(t, err)

	_, err = svc.Add(author.ID, postB.ID, &parent.ID, "crossed")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestCommentValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewCommentService(db)
	author := createUser(t, db, "author")

	post := models.Post{AuthorID: author.ID, Scope: models.ScopeGlobal, Content: "topic"}
	require.NoError(t, db.Create(&post).Error)

	_, err := svc.Add(author.ID, post.ID, nil, "  ")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = svc.Add(author.ID, 404, nil, "hello")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	missing := uint(404)
	_, err = svc.Add(author.ID, post.ID, &missing, "hello")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
