package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// AssistController serves the knowledge base and the AI answer endpoint.
type AssistController struct {
	assist *services.AssistService
}

func NewAssistController(assist *services.AssistService) *AssistController {
	return &AssistController{assist: assist}
}

// Ask generates an answer grounded on the knowledge base.
func (a *AssistController) Ask(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40120, "invalid request payload")
		return
	}

	answer, err := a.assist.Ask(ctx.Request.Context(), req.Question)
	if err != nil {
		utils.Fail(ctx, err, 50120)
		return
	}
	utils.Success(ctx, answer)
}

// ListDocs returns all knowledge base documents.
func (a *AssistController) ListDocs(ctx *gin.Context) {
	docs, err := a.assist.ListDocs()
	if err != nil {
		utils.Fail(ctx, err, 50121)
		return
	}
	utils.Success(ctx, gin.H{"items": docs})
}

// CreateDoc stores a knowledge base document. Admin only.
func (a *AssistController) CreateDoc(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "admin only")
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required,min=1"`
		Content string `json:"content" binding:"required"`
		Tags    string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40121, "invalid request payload")
		return
	}

	doc, err := a.assist.CreateDoc(userID, req.Title, req.Content, req.Tags)
	if err != nil {
		utils.Fail(ctx, err, 40122)
		return
	}
	utils.Success(ctx, gin.H{"document": doc})
}

// UpdateDoc patches a knowledge base document. Admin only.
func (a *AssistController) UpdateDoc(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "admin only")
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40123, "invalid document id")
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Tags    *string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40124, "invalid request payload")
		return
	}

	doc, err := a.assist.UpdateDoc(id, req.Title, req.Content, req.Tags)
	if err != nil {
		utils.Fail(ctx, err, 40425)
		return
	}
	utils.Success(ctx, gin.H{"document": doc})
}

// DeleteDoc removes a knowledge base document. Admin only.
func (a *AssistController) DeleteDoc(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "admin only")
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40125, "invalid document id")
		return
	}
	if err := a.assist.DeleteDoc(id); err != nil {
		utils.Fail(ctx, err, 40426)
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}
