package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	Service *service.ContentService
}

func NewContentController(svc *service.ContentService) *ContentController {
	return &ContentController{Service: svc}
}

// @Summary 创建学习路径
// @Tags 内容编辑
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreatePathRequest true "路径信息"
// @Success 201 {object} util.Response
// @Router /api/admin/paths [post]
func (c *ContentController) CreatePath(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreatePathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.Service.CreatePath(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, path)
}

// @Summary 学习路径列表
// @Tags 内容编辑
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/paths [get]
func (c *ContentController) ListPaths(ctx *gin.Context) {
	page := util.ParseIntDefault(ctx.DefaultQuery("page", "1"), 1)
	limit := util.ParseIntDefault(ctx.DefaultQuery("limit", "20"), 20)

	paths, total, err := c.Service.ListPaths(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": paths, "total": total})
}

// @Summary 学习路径详情（整树）
// @Tags 内容编辑
// @Produce json
// @Param id path string true "路径ID"
// @Success 200 {object} util.Response
// @Router /api/paths/{id} [get]
func (c *ContentController) GetPath(ctx *gin.Context) {
	path, err := c.Service.GetPath(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrLearningPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, path)
}

// @Summary 创建模块
// @Tags 内容编辑
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateModuleRequest true "模块信息"
// @Success 201 {object} util.Response
// @Router /api/admin/modules [post]
func (c *ContentController) CreateModule(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.Service.CreateModule(req)
	if err != nil {
		if errors.Is(err, util.ErrLearningPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, m)
}

// @Summary 创建子模块
// @Tags 内容编辑
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateSubmoduleRequest true "子模块信息"
// @Success 201 {object} util.Response
// @Router /api/admin/submodules [post]
func (c *ContentController) CreateSubmodule(ctx *gin.Context) {
	var req service.CreateSubmoduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sm, err := c.Service.CreateSubmodule(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, sm)
}

// @Summary 创建章节
// @Tags 内容编辑
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateChapterRequest true "章节信息"
// @Success 201 {object} util.Response
// @Router /api/admin/chapters [post]
func (c *ContentController) CreateChapter(ctx *gin.Context) {
	var req service.CreateChapterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ch, err := c.Service.CreateChapter(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, ch)
}

// @Summary 上传章节视频
// @Description 上传后用 ffmpeg 探测时长并回填章节
// @Tags 内容编辑
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "章节ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response
// @Router /api/admin/chapters/{id}/video [post]
func (c *ContentController) UploadChapterVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	chapter, err := c.Service.UploadChapterVideo(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		if errors.Is(err, util.ErrChapterNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, chapter)
}
