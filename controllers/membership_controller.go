package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

const departmentsCacheKey = "cache:departments:list"

// MembershipController serves groups and departments.
type MembershipController struct {
	membership *services.MembershipService
}

func NewMembershipController(membership *services.MembershipService) *MembershipController {
	return &MembershipController{membership: membership}
}

// ListGroups returns all groups; ?joined=1 restricts to the viewer's own.
func (m *MembershipController) ListGroups(ctx *gin.Context) {
	joinedOnly := ctx.Query("joined") == "1"
	groups, err := m.membership.ListGroups(optionalUserID(ctx), joinedOnly)
	if err != nil {
		utils.Fail(ctx, err, 50030)
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// CreateGroup creates a group and joins the creator.
func (m *MembershipController) CreateGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,min=1"`
		Description string `json:"description"`
		Emoji       string `json:"emoji"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	group, err := m.membership.CreateGroup(userID, req.Name, req.Description, req.Emoji)
	if err != nil {
		utils.Fail(ctx, err, 40031)
		return
	}
	utils.Success(ctx, gin.H{"group": group})
}

// GetGroup returns one group with the viewer's joined flag.
func (m *MembershipController) GetGroup(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid group id")
		return
	}
	group, err := m.membership.GetGroup(optionalUserID(ctx), id)
	if err != nil {
		utils.Fail(ctx, err, 40430)
		return
	}
	utils.Success(ctx, gin.H{"group": group})
}

// JoinGroup adds the caller to a group.
func (m *MembershipController) JoinGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid group id")
		return
	}
	if err := m.membership.JoinGroup(userID, id); err != nil {
		utils.Fail(ctx, err, 40431)
		return
	}
	utils.Success(ctx, gin.H{"joined": true})
}

// LeaveGroup removes the caller from a group.
func (m *MembershipController) LeaveGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid group id")
		return
	}
	if err := m.membership.LeaveGroup(userID, id); err != nil {
		utils.Fail(ctx, err, 40432)
		return
	}
	utils.Success(ctx, gin.H{"joined": false})
}

// ListDepartments returns all departments with member counts. The list is
// identical for every viewer, so it is cached.
func (m *MembershipController) ListDepartments(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(departmentsCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	depts, err := m.membership.ListDepartments()
	if err != nil {
		utils.Fail(ctx, err, 50031)
		return
	}
	payload := gin.H{"items": depts}
	utils.CacheSetJSON(departmentsCacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 10*time.Minute)
	utils.Success(ctx, payload)
}

// GetDepartment returns one department by slug.
func (m *MembershipController) GetDepartment(ctx *gin.Context) {
	slug := ctx.Param("slug")
	dept, err := m.membership.GetDepartmentBySlug(slug)
	if err != nil {
		utils.Fail(ctx, err, 40433)
		return
	}
	utils.Success(ctx, gin.H{"department": dept})
}

// JoinDepartment moves the caller into a department.
func (m *MembershipController) JoinDepartment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid department id")
		return
	}
	if err := m.membership.JoinDepartment(userID, id); err != nil {
		utils.Fail(ctx, err, 40434)
		return
	}
	utils.InvalidateByPrefix(departmentsCacheKey)
	utils.Success(ctx, gin.H{"joined": true})
}

// LeaveDepartment removes the caller from a department.
func (m *MembershipController) LeaveDepartment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, okID := parseUintParam(ctx, "id")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid department id")
		return
	}
	if err := m.membership.LeaveDepartment(userID, id); err != nil {
		utils.Fail(ctx, err, 40435)
		return
	}
	utils.InvalidateByPrefix(departmentsCacheKey)
	utils.Success(ctx, gin.H{"joined": false})
}
