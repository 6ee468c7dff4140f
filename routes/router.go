package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mireadev/teamlink/config"
	"github.com/mireadev/teamlink/controllers"
	"github.com/mireadev/teamlink/middleware"
	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store utils.BlobStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	// Services
	identity := services.NewIdentityService(db)
	badges := services.NewBadgeService(db, cfg.StreakBadgeThreshold, cfg.LoungeSlug)
	membership := services.NewMembershipService(db, badges, cfg.LoungeSlug)
	feed := services.NewFeedService(db, membership, badges)
	reactions := services.NewReactionService(db, cfg.AnswerReactionPoints)
	comments := services.NewCommentService(db)
	conversations := services.NewConversationService(db)
	notifications := services.NewNotificationService(db, membership, conversations, cfg.BroadcastMessage)
	quiz := services.NewQuizService(db, badges)
	questions := services.NewQuestionService(db, cfg.AcceptAnswerPoints)
	search := services.NewSearchService(db, feed, membership)
	assist := services.NewAssistService(db, services.KeywordRanker{}, utils.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel))

	// Controllers
	userController := controllers.NewUserController(identity, badges)
	membershipController := controllers.NewMembershipController(membership)
	feedController := controllers.NewFeedController(feed, store)
	reactionController := controllers.NewReactionController(reactions)
	commentController := controllers.NewCommentController(comments)
	conversationController := controllers.NewConversationController(conversations)
	notificationController := controllers.NewNotificationController(notifications)
	quizController := controllers.NewQuizController(quiz)
	questionController := controllers.NewQuestionController(questions)
	searchController := controllers.NewSearchController(search)
	assistController := controllers.NewAssistController(assist)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware())

	// Public reads, personalized when a token is presented
	public := api.Group("")
	public.Use(middleware.OptionalAuth(identity))
	public.GET("/feed", feedController.ListFeed)
	public.GET("/posts/:id", feedController.GetPost)
	public.GET("/posts/:id/comments", commentController.ListComments)
	public.GET("/comments/:id/replies", commentController.ListReplies)
	public.GET("/groups", membershipController.ListGroups)
	public.GET("/groups/:id", membershipController.GetGroup)
	public.GET("/departments", membershipController.ListDepartments)
	public.GET("/departments/slug/:slug", membershipController.GetDepartment)
	public.GET("/users/:id", userController.GetUser)
	public.GET("/questions", questionController.List)
	public.GET("/questions/:id", questionController.Get)
	public.GET("/search", searchController.Search)
	public.GET("/kb/docs", assistController.ListDocs)

	// Authenticated operations
	auth := api.Group("")
	auth.Use(middleware.AuthRequired(identity))
	auth.GET("/me", userController.Me)
	auth.PATCH("/me/profile", userController.UpdateProfile)
	auth.POST("/me/badges/recompute", userController.RecomputeBadges)
	auth.GET("/users", userController.ListUsers)

	auth.POST("/posts", feedController.CreatePost)
	auth.POST("/uploads", feedController.UploadMedia)
	auth.POST("/posts/:id/comments", commentController.AddComment)
	auth.POST("/reactions/toggle", reactionController.Toggle)

	auth.POST("/groups", membershipController.CreateGroup)
	auth.POST("/groups/:id/join", membershipController.JoinGroup)
	auth.POST("/groups/:id/leave", membershipController.LeaveGroup)
	auth.POST("/departments/:id/join", membershipController.JoinDepartment)
	auth.POST("/departments/:id/leave", membershipController.LeaveDepartment)

	auth.POST("/conversations/direct", conversationController.OpenDirect)
	auth.GET("/conversations", conversationController.ListConversations)
	auth.GET("/conversations/unread", conversationController.UnreadTotal)
	auth.GET("/conversations/:id/messages", conversationController.ListMessages)
	auth.POST("/conversations/:id/messages", conversationController.SendMessage)
	auth.POST("/conversations/:id/read", conversationController.MarkRead)

	auth.GET("/notifications", notificationController.List)
	auth.POST("/notifications/read-all", notificationController.MarkAllRead)
	auth.POST("/broadcast", notificationController.Broadcast)

	auth.GET("/quiz/today", quizController.Today)
	auth.POST("/quiz/answer", quizController.Answer)
	auth.GET("/quiz/streak", quizController.Streak)
	auth.PUT("/quiz", quizController.Upsert)

	auth.POST("/questions", questionController.Create)
	auth.POST("/questions/:id/answers", questionController.CreateAnswer)
	auth.POST("/questions/:id/accept/:answer_id", questionController.Accept)

	auth.POST("/assist/ask", assistController.Ask)
	auth.POST("/kb/docs", assistController.CreateDoc)
	auth.PATCH("/kb/docs/:id", assistController.UpdateDoc)
	auth.DELETE("/kb/docs/:id", assistController.DeleteDoc)

	return r
}
