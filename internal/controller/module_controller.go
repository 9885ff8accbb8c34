package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	Access   *service.AccessService
	Progress *service.ProgressService
	Quiz     *service.QuizService
}

func NewModuleController(access *service.AccessService, progress *service.ProgressService, quiz *service.QuizService) *ModuleController {
	return &ModuleController{Access: access, Progress: progress, Quiz: quiz}
}

// 学生身份一律取 token 里的 studentId，不信任请求携带的身份
func studentFromContext(ctx *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil || claims.StudentID == "" {
		util.Unauthorized(ctx)
		return "", false
	}
	return claims.StudentID, true
}

// @Summary 模块解锁检查
// @Description 锁定是预期内的业务状态，以结构化 moduleAccess 返回而不是 403
// @Tags 模块
// @Produce json
// @Param learningPathId query string true "学习路径ID"
// @Param moduleIndex query int true "模块序号（0 起）"
// @Param chapterId query string false "章节ID"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/modules/check-access [get]
func (c *ModuleController) CheckAccess(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}
	learningPathID := ctx.Query("learningPathId")
	moduleIndexStr := ctx.Query("moduleIndex")
	if learningPathID == "" || moduleIndexStr == "" {
		util.BadRequest(ctx, "learningPathId and moduleIndex are required")
		return
	}
	moduleIndex, err := strconv.Atoi(moduleIndexStr)
	if err != nil {
		util.BadRequest(ctx, "moduleIndex must be an integer")
		return
	}

	access, err := c.Access.CheckAccess(ctx.Request.Context(), studentID, learningPathID, moduleIndex, time.Now())
	if err != nil {
		if errors.Is(err, util.ErrLearningPathNotFound) || errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"moduleAccess": access})
}

type QuizScoreRequest struct {
	ChapterID string `json:"chapterId" binding:"required"`
	// Score 客户端自算的百分比，仅作参考，入库口径按 correct/total 重算
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	QuizAttempts   []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Correct  bool   `json:"correct"`
	} `json:"quizAttempts"`
	VideoWatchTime *int `json:"videoWatchTime,omitempty"`
	VideoDuration  *int `json:"videoDuration,omitempty"`
}

// @Summary 记录测验成绩与观看进度
// @Tags 模块
// @Accept json
// @Produce json
// @Param body body QuizScoreRequest true "成绩与观看上报"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/modules/quiz-score [post]
func (c *ModuleController) RecordQuizScore(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}
	var req QuizScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// 同一请求可同时携带测验成绩与观看时长（播放器在提交测验时顺带冲一次进度）
	if req.TotalQuestions > 0 {
		if _, err := c.Progress.RecordQuiz(studentID, req.ChapterID, req.TotalQuestions, req.CorrectAnswers); err != nil {
			c.respondProgressError(ctx, err)
			return
		}
	}

	if req.VideoWatchTime != nil {
		if _, err := c.Progress.RecordVideoWatch(studentID, req.ChapterID, *req.VideoWatchTime, req.VideoDuration); err != nil {
			c.respondProgressError(ctx, err)
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *ModuleController) respondProgressError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrChapterNotFound) {
		util.NotFound(ctx)
		return
	}
	if errors.Is(err, util.ErrInvalidQuizResult) {
		util.BadRequest(ctx, "correctAnswers must be between 0 and totalQuestions")
		return
	}
	util.LogInternalError(ctx, err)
}

// @Summary 学生章节进度
// @Tags 模块
// @Produce json
// @Param learningPathId query string false "按学习路径过滤"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/modules/progress [get]
func (c *ModuleController) ListProgress(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}

	progress, err := c.Progress.ListProgress(studentID, ctx.Query("learningPathId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "progress": progress})
}

type QuizSubmitRequest struct {
	ChapterID string   `json:"chapterId" binding:"required"`
	Answers   []string `json:"answers" binding:"required"`
}

// @Summary 提交生成的测验（服务端判分）
// @Description 按最近一次生成的试卷在服务端比对答案并写入进度
// @Tags 模块
// @Accept json
// @Produce json
// @Param body body QuizSubmitRequest true "答案"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/modules/quiz-submit [post]
func (c *ModuleController) SubmitQuiz(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}
	var req QuizSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, progress, err := c.Quiz.SubmitGenerated(ctx.Request.Context(), studentID, req.ChapterID, req.Answers)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotGenerated) {
			util.BadRequest(ctx, "no generated quiz to submit against")
			return
		}
		if errors.Is(err, util.ErrChapterNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"result":   result,
		"progress": progress,
	})
}
