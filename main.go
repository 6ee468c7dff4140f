package main

import (
	"time"

	"github.com/mireadev/teamlink/config"
	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/routes"
	"github.com/mireadev/teamlink/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
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
		&models.KBDoc{}, &models.UploadedFile{},
	)

	ttl := time.Duration(cfg.UploadsSelfDestructMinutes) * time.Minute
	store := utils.NewLocalBlobStore(db, "./static/uploads", 0, ttl)

	r := routes.SetupRouter(db, store)

	// Best-effort background cleanup for expired uploads
	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
