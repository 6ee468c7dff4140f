package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mireadev/teamlink/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.UserBadge{},
		&models.Department{}, &models.DepartmentMember{},
		&models.Group{}, &models.GroupMember{},
		&models.Post{}, &models.PostMedia{},
		&models.Comment{}, &models.Reaction{},
		&models.Conversation{}, &models.ConversationMember{},
		&models.Message{}, &models.MessageRead{},
		&models.Notification{},
		&models.Quiz{}, &models.Streak{},
		&models.Question{}, &models.Answer{},
		&models.KBDoc{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := models.User{
		SubjectID: "sub-" + name,
		Name:      name,
		Email:     fmt.Sprintf("%s@example.com", name),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createDepartment(t *testing.T, db *gorm.DB, name, slug string) *models.Department {
	t.Helper()
	dept := models.Department{Name: name, Slug: slug}
	require.NoError(t, db.Create(&dept).Error)
	return &dept
}
