package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/pkg/apperrors"
)

type stubGenerator struct {
	answer string
	err    error
	blocks []string
}

func (s *stubGenerator) Generate(_ context.Context, _ string, blocks []string) (string, error) {
	s.blocks = blocks
	return s.answer, s.err
}

func TestAskGroundsOnTopDocuments(t *testing.T) {
	db := newTestDB(t)
	gen := &stubGenerator{answer: "use the side entrance"}
	svc := NewAssistService(db, KeywordRanker{}, gen)
	admin := createUser(t, db, "admin")

	_, err := svc.CreateDoc(admin.ID, "Building access", "badge in at the side entrance", "facilities")
	require.NoError(t, err)
	_, err = svc.CreateDoc(admin.ID, "Cafeteria menu", "soup on tuesdays", "food")
	require.NoError(t, err)

	answer, err := svc.Ask(context.Background(), "how do I get building access?")
	require.NoError(t, err)
	assert.Equal(t, "use the side entrance", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "Building access", answer.Sources[0])
	require.Len(t, gen.blocks, 1)
	assert.Contains(t, gen.blocks[0], "side entrance")
}

func TestAskGeneratorFailure(t *testing.T) {
	db := newTestDB(t)
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := NewAssistService(db, KeywordRanker{}, gen)

	_, err := svc.Ask(context.Background(), "anything at all")
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	// The upstream cause never leaks into the returned error.
	assert.NotContains(t, err.Error(), "upstream down")

	_, err = svc.Ask(context.Background(), "   ")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestDocCRUD(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssistService(db, KeywordRanker{}, &stubGenerator{})
	admin := createUser(t, db, "admin")

	_, err := svc.CreateDoc(admin.ID, "", "content", "")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	doc, err := svc.CreateDoc(admin.ID, "Onboarding", "first week checklist", "hr")
	require.NoError(t, err)

	newTitle := "Onboarding guide"
	updated, err := svc.UpdateDoc(doc.ID, &newTitle, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding guide", updated.Title)
	assert.Equal(t, "first week checklist", updated.Content)

	docs, err := svc.ListDocs()
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, svc.DeleteDoc(doc.ID))
	err = svc.DeleteDoc(doc.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
