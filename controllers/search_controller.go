package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// SearchController serves cross-entity search.
type SearchController struct {
	search *services.SearchService
}

func NewSearchController(search *services.SearchService) *SearchController {
	return &SearchController{search: search}
}

// Search runs one query across posts, people and groups.
func (s *SearchController) Search(ctx *gin.Context) {
	results, err := s.search.Search(optionalUserID(ctx), ctx.Query("q"), parseLimit(ctx))
	if err != nil {
		utils.Fail(ctx, err, 50110)
		return
	}
	utils.Success(ctx, results)
}
