package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// QuestionController serves the Q&A board.
type QuestionController struct {
	questions *services.QuestionService
}

func NewQuestionController(questions *services.QuestionService) *QuestionController {
	return &QuestionController{questions: questions}
}

// Create posts a new question.
func (q *QuestionController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Title string `json:"title" binding:"required,min=1"`
		Body  string `json:"body"`
		Tags  string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40100, "invalid request payload")
		return
	}

	question, err := q.questions.CreateQuestion(userID, req.Title, req.Body, req.Tags)
	if err != nil {
		utils.Fail(ctx, err, 40106)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}

// List returns questions newest first with their answer counts.
func (q *QuestionController) List(ctx *gin.Context) {
	questions, err := q.questions.ListQuestions(parseLimit(ctx))
	if err != nil {
		utils.Fail(ctx, err, 50100)
		return
	}
	utils.Success(ctx, gin.H{"items": questions})
}

// Get returns one question with its sorted answers.
func (q *QuestionController) Get(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40107, "invalid question id")
		return
	}
	question, err := q.questions.GetQuestion(optionalUserID(ctx), id)
	if err != nil {
		utils.Fail(ctx, err, 40480)
		return
	}
	utils.Success(ctx, gin.H{"question": question})
}

// CreateAnswer posts an answer to a question.
func (q *QuestionController) CreateAnswer(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	questionID, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40108, "invalid question id")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40109, "invalid request payload")
		return
	}

	answer, err := q.questions.CreateAnswer(userID, questionID, req.Content)
	if err != nil {
		utils.Fail(ctx, err, 40111)
		return
	}
	utils.Success(ctx, gin.H{"answer": answer})
}

// Accept marks an answer as accepted, question author only.
func (q *QuestionController) Accept(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	questionID, okQ := parseUintParam(ctx, "id")
	answerID, okA := parseUintParam(ctx, "answer_id")
	if !okQ || !okA {
		utils.Error(ctx, http.StatusBadRequest, 40112, "invalid question or answer id")
		return
	}

	if err := q.questions.AcceptAnswer(userID, questionID, answerID); err != nil {
		utils.Fail(ctx, err, 40113)
		return
	}
	utils.Success(ctx, gin.H{"accepted": true})
}
