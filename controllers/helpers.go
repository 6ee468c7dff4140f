package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/config"
	"github.com/mireadev/teamlink/middleware"
)

// getUserID extracts the authenticated user ID from Gin context.
func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// optionalUserID returns the viewer's id or zero for anonymous requests.
func optionalUserID(ctx *gin.Context) uint {
	id, _ := getUserID(ctx)
	return id
}

// isAdmin checks the authenticated email against the configured admin list.
func isAdmin(ctx *gin.Context) bool {
	value, exists := ctx.Get(middleware.ContextUserEmailKey)
	if !exists {
		return false
	}
	email, ok := value.(string)
	if !ok || email == "" {
		return false
	}
	for _, admin := range config.Get().AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// parseUintParam parses a numeric path parameter.
func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseLimit reads an optional limit query parameter, zero when absent.
func parseLimit(ctx *gin.Context) int {
	raw := ctx.Query("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
