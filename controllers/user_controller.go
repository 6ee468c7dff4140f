package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// UserController serves profiles and the people directory.
type UserController struct {
	identity *services.IdentityService
	badges   *services.BadgeService
}

func NewUserController(identity *services.IdentityService, badges *services.BadgeService) *UserController {
	return &UserController{identity: identity, badges: badges}
}

// Me returns the authenticated user's own record.
func (u *UserController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	user, err := u.identity.GetUser(userID)
	if err != nil {
		utils.Fail(ctx, err, 50010)
		return
	}
	utils.Success(ctx, gin.H{"user": user, "is_admin": isAdmin(ctx)})
}

// GetUser returns a public profile with badges.
func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid user id")
		return
	}
	user, err := u.identity.GetUser(id)
	if err != nil {
		utils.Fail(ctx, err, 40410)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile patches the caller's own profile fields.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Bio         *string `json:"bio"`
		BannerURL   *string `json:"banner_url"`
		Birthday    *string `json:"birthday"`
		SocialLinks *string `json:"social_links"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	user, err := u.identity.UpdateProfile(userID, services.ProfileUpdate{
		Bio:         req.Bio,
		BannerURL:   req.BannerURL,
		Birthday:    req.Birthday,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		utils.Fail(ctx, err, 50011)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// RecomputeBadges re-derives the caller's badge set from fresh signals.
func (u *UserController) RecomputeBadges(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	badges, err := u.badges.Recompute(userID)
	if err != nil {
		utils.Fail(ctx, err, 50013)
		return
	}
	utils.Success(ctx, gin.H{"badges": badges})
}

// ListUsers returns the people directory.
func (u *UserController) ListUsers(ctx *gin.Context) {
	users, err := u.identity.ListUsers(parseLimit(ctx))
	if err != nil {
		utils.Fail(ctx, err, 50012)
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}
