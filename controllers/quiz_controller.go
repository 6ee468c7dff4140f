package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// QuizController serves the daily challenge.
type QuizController struct {
	quiz *services.QuizService
}

func NewQuizController(quiz *services.QuizService) *QuizController {
	return &QuizController{quiz: quiz}
}

// Today returns today's quiz without the answer, plus whether the caller
// already answered it.
func (q *QuizController) Today(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	quiz, err := q.quiz.GetToday(userID)
	if err != nil {
		utils.Fail(ctx, err, 40490)
		return
	}
	utils.Success(ctx, gin.H{"quiz": quiz})
}

// Answer records the caller's single attempt at today's quiz.
func (q *QuizController) Answer(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Choice *int `json:"choice" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid request payload")
		return
	}

	result, err := q.quiz.AnswerToday(userID, *req.Choice)
	if err != nil {
		utils.Fail(ctx, err, 40091)
		return
	}
	utils.Success(ctx, result)
}

// Streak returns the caller's streak state.
func (q *QuizController) Streak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	streak, err := q.quiz.GetStreak(userID)
	if err != nil {
		utils.Fail(ctx, err, 50090)
		return
	}
	utils.Success(ctx, gin.H{"streak": streak})
}

// Upsert schedules or replaces the quiz for a date. Admin only.
func (q *QuizController) Upsert(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40390, "admin only")
		return
	}

	var req struct {
		Date     string   `json:"date" binding:"required"`
		Question string   `json:"question" binding:"required"`
		Options  []string `json:"options" binding:"required"`
		Correct  *int     `json:"correct" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid request payload")
		return
	}

	quiz, err := q.quiz.UpsertQuiz(req.Date, req.Question, req.Options, *req.Correct)
	if err != nil {
		utils.Fail(ctx, err, 40093)
		return
	}
	utils.Success(ctx, gin.H{"quiz": quiz})
}
