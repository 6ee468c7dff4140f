package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/pkg/apperrors"
)

func TestResolveOrCreateFirstContact(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(db)

	user, err := svc.ResolveOrCreate(Principal{
		SubjectID: "prov|123",
		Email:     "dana@example.com",
		Name:      "Dana",
		AvatarURL: "https://cdn.example.com/dana.png",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "Dana", user.Name)
	assert.NotNil(t, user.LastActiveAt)

	// A second resolve returns the same row, not a duplicate.
	again, err := svc.ResolveOrCreate(Principal{SubjectID: "prov|123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveOrCreateAdoptsLegacyEmailRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(db)

	legacy := models.User{Name: "Old Row", Email: "legacy@example.com"}
	require.NoError(t, db.Create(&legacy).Error)

	user, err := svc.ResolveOrCreate(Principal{
		SubjectID: "prov|legacy",
		Email:     "legacy@example.com",
		Name:      "Legacy User",
	})
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, user.ID)
	assert.Equal(t, "prov|legacy", user.SubjectID)
	assert.Equal(t, "Legacy User", user.Name)
}

func TestResolveOrCreateDerivesNameFromEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(db)

	user, err := svc.ResolveOrCreate(Principal{SubjectID: "prov|x", Email: "pat.lee@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pat.lee", user.Name)

	_, err = svc.ResolveOrCreate(Principal{})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
}

func TestUpdateProfilePatchesOnlyGivenFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(db)
	user := createUser(t, db, "editor")

	bio := "hello there"
	updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, user.Name, updated.Name)

	birthday := "1990-04-01"
	updated, err = svc.UpdateProfile(user.ID, ProfileUpdate{Birthday: &birthday})
	require.NoError(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, "1990-04-01", updated.Birthday)

	_, err = svc.UpdateProfile(404, ProfileUpdate{})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
