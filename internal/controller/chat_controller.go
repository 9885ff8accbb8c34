package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Chat *service.ChatService
}

func NewChatController(chat *service.ChatService) *ChatController {
	return &ChatController{Chat: chat}
}

// @Summary AI 助教对话
// @Description 额度内消费一次 chat 单位并转发到下游模型；额度耗尽返回 200 + limitReached
// @Tags 对话
// @Accept json
// @Produce json
// @Param body body service.ChatRequest true "对话请求"
// @Success 200 {object} util.Response
// @Router /api/chat [post]
func (c *ChatController) Send(ctx *gin.Context) {
	var req service.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, usage, err := c.Chat.Send(ctx.Request.Context(), req, time.Now())
	if err != nil {
		if errors.Is(err, util.ErrLimitExceeded) {
			util.LimitReached(ctx, usage.Limit, "今日的 AI 对话次数已用完，订阅后可提升额度")
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
		"success":  true,
		"response": answer,
		"usage":    usage,
	})
}

// @Summary 会话历史
// @Tags 对话
// @Produce json
// @Param sessionId query string true "会话标识"
// @Success 200 {object} util.Response
// @Router /api/chat/history [get]
func (c *ChatController) History(ctx *gin.Context) {
	sessionID := ctx.Query("sessionId")
	if sessionID == "" {
		util.BadRequest(ctx, "sessionId is required")
		return
	}

	msgs, err := c.Chat.History(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"messages": msgs})
}
