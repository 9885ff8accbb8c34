package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type UsageController struct {
	Quota *service.QuotaService
}

func NewUsageController(quota *service.QuotaService) *UsageController {
	return &UsageController{Quota: quota}
}

// @Summary 章节配额快照
// @Description 返回该章节当前的 chat/mcq 用量与剩余额度
// @Tags 配额
// @Produce json
// @Param chapterId query string true "章节ID"
// @Param learningPathId query string true "学习路径ID"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/usage/chapter-status [get]
func (c *UsageController) ChapterStatus(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}
	chapterID := ctx.Query("chapterId")
	learningPathID := ctx.Query("learningPathId")
	if chapterID == "" || learningPathID == "" {
		util.BadRequest(ctx, "chapterId and learningPathId are required")
		return
	}

	usage, err := c.Quota.ChapterStatus(ctx.Request.Context(), studentID, chapterID, learningPathID, time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"usage": usage})
}
