package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mireadev/teamlink/models"
	"github.com/mireadev/teamlink/services"
	"github.com/mireadev/teamlink/utils"
)

// Unpersonalized feed reads are cached under this prefix; every write that
// changes a post payload (posts, comments, reactions) invalidates it.
const feedCachePrefix = "cache:feed:"

const feedCacheTTL = time.Minute

// FeedController serves the post feed and media uploads.
type FeedController struct {
	feed  *services.FeedService
	store utils.BlobStore
}

func NewFeedController(feed *services.FeedService, store utils.BlobStore) *FeedController {
	return &FeedController{feed: feed, store: store}
}

// CreatePost publishes a post to a target audience.
func (f *FeedController) CreatePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Content      string                `json:"content" binding:"required"`
		TargetKind   string                `json:"target_kind"`
		DepartmentID uint                  `json:"department_id"`
		GroupID      uint                  `json:"group_id"`
		IsShowcase   bool                  `json:"is_showcase"`
		Media        []services.MediaInput `json:"media"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	var target models.Target
	switch req.TargetKind {
	case "", string(models.TargetGlobal):
		target = models.GlobalTarget()
	case string(models.TargetDepartment):
		target = models.DepartmentTarget(req.DepartmentID)
	case string(models.TargetGroup):
		target = models.GroupTarget(req.GroupID)
	default:
		utils.Error(ctx, http.StatusBadRequest, 40041, "unknown target kind")
		return
	}

	post, err := f.feed.CreatePost(userID, target, req.Content, req.IsShowcase, req.Media)
	if err != nil {
		utils.Fail(ctx, err, 40042)
		return
	}

	utils.InvalidateByPrefix(feedCachePrefix)
	utils.Success(ctx, gin.H{"post": post})
}

// ListFeed returns visible posts for the viewer. Explicit department/group
// filters bypass personalization; those lists are identical for every
// anonymous viewer, so they are served from cache.
func (f *FeedController) ListFeed(ctx *gin.Context) {
	filter := services.FeedFilter{
		ShowcaseOnly: ctx.Query("showcase") == "1",
		Limit:        parseLimit(ctx),
	}
	if raw := ctx.Query("department_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.DepartmentID = uint(id)
		}
	}
	if raw := ctx.Query("group_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.GroupID = uint(id)
		}
	}

	viewerID := optionalUserID(ctx)
	cacheKey := ""
	if viewerID == 0 && (filter.DepartmentID != 0 || filter.GroupID != 0) {
		cacheKey = fmt.Sprintf("%slist:d%d:g%d:s%t:l%d",
			feedCachePrefix, filter.DepartmentID, filter.GroupID, filter.ShowcaseOnly, filter.Limit)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	posts, err := f.feed.ListFeed(viewerID, filter)
	if err != nil {
		utils.Fail(ctx, err, 50040)
		return
	}
	payload := gin.H{"items": posts}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, feedCacheTTL)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post if the viewer may see it. Anonymous reads all
// see the same projection (global posts, no viewer reactions) and are cached.
func (f *FeedController) GetPost(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid post id")
		return
	}

	viewerID := optionalUserID(ctx)
	cacheKey := ""
	if viewerID == 0 {
		cacheKey = fmt.Sprintf("%spost:%d", feedCachePrefix, id)
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	post, err := f.feed.GetPost(viewerID, id)
	if err != nil {
		utils.Fail(ctx, err, 40440)
		return
	}
	payload := gin.H{"post": post}
	if cacheKey != "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, feedCacheTTL)
	}
	utils.Success(ctx, payload)
}

// UploadMedia stores an attachment and returns its URL for a later post.
func (f *FeedController) UploadMedia(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "file is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "failed to read file")
		return
	}
	defer src.Close()

	stored, err := f.store.Save(src, file.Filename)
	if err != nil {
		if errors.Is(err, utils.ErrBlobTooLarge) {
			utils.Error(ctx, http.StatusBadRequest, 40046, "file too large")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to store file")
		return
	}
	utils.Success(ctx, gin.H{"url": f.store.Resolve(stored)})
}
