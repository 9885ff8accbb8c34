package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Quiz *service.QuizService
}

func NewQuizController(quiz *service.QuizService) *QuizController {
	return &QuizController{Quiz: quiz}
}

type GenerateMcqRequest struct {
	ChapterID      string `json:"chapterId" binding:"required"`
	LearningPathID string `json:"learningPathId" binding:"required"`
}

// @Summary 生成章节测验
// @Description 消费一个 mcq 单位并调用下游出题；月度额度耗尽返回 200 + limitReached
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body GenerateMcqRequest true "生成请求"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/webhook/generate-mcq [post]
func (c *QuizController) GenerateMcq(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}
	var req GenerateMcqRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, usage, err := c.Quiz.Generate(ctx.Request.Context(), studentID, req.ChapterID, req.LearningPathID, time.Now())
	if err != nil {
		if errors.Is(err, util.ErrLimitExceeded) {
			ctx.JSON(http.StatusOK, gin.H{
				"error":        "limit exceeded",
				"limitReached": true,
				"limit":        usage.Limit,
				"message":      "本月的测验生成次数已用完，订阅后可提升额度",
			})
			return
		}
		if errors.Is(err, util.ErrChapterNotFound) {
			util.NotFound(ctx)
			return
		}
		if errors.Is(err, util.ErrUnavailable) {
			util.ServiceUnavailable(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"questions": questions,
		"usage":     usage,
	})
}
