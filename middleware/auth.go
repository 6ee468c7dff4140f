package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

const (
	// ContextUserIDKey is the key used to store the resolved user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserEmailKey stores the verified email inside Gin context.
	ContextUserEmailKey = "user_email"
)

// AuthRequired ensures the request carries a valid principal token and
// resolves it to an internal user, creating one on first contact.
func AuthRequired(identity *services.IdentityService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := bearerToken(ctx)
		if !ok {
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "invalid token")
			ctx.Abort()
			return
		}

		user, err := identity.ResolveOrCreate(services.Principal{
			SubjectID: claims.Subject,
			Email:     claims.Email,
			Name:      claims.Name,
			AvatarURL: claims.AvatarURL,
		})
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to resolve user")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUserEmailKey, user.Email)
		ctx.Next()
	}
}

// OptionalAuth resolves a principal when one is presented but lets anonymous
// requests through. Read endpoints use it to personalize results.
func OptionalAuth(identity *services.IdentityService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			ctx.Next()
			return
		}

		claims, err := utils.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			ctx.Next()
			return
		}

		user, err := identity.ResolveOrCreate(services.Principal{
			SubjectID: claims.Subject,
			Email:     claims.Email,
			Name:      claims.Name,
			AvatarURL: claims.AvatarURL,
		})
		if err != nil {
			utils.Sugar.Warnf("optional auth resolve failed: %v", err)
			ctx.Next()
			return
		}

		ctx.Set(ContextUserIDKey, user.ID)
		ctx.Set(ContextUserEmailKey, user.Email)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
		return "", false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "empty bearer token")
		return "", false
	}
	return tokenString, true
}
