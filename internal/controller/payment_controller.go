package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	Subs *service.SubscriptionService
}

func NewPaymentController(subs *service.SubscriptionService) *PaymentController {
	return &PaymentController{Subs: subs}
}

// @Summary 订阅状态
// @Tags 支付
// @Produce json
// @Param learningPathId query string true "学习路径ID"
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/payments/subscription-status [get]
func (c *PaymentController) SubscriptionStatus(ctx *gin.Context) {
	studentID, ok := studentFromContext(ctx)
	if !ok {
		return
	}
	learningPathID := ctx.Query("learningPathId")
	if learningPathID == "" {
		util.BadRequest(ctx, "learningPathId is required")
		return
	}

	status, err := c.Subs.Status(ctx.Request.Context(), studentID, learningPathID, time.Now())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, status)
}

// @Summary 支付结果回调
// @Description 支付端写入订阅记录，引擎只消费支付的结果
// @Tags 支付
// @Accept json
// @Produce json
// @Param body body service.PaymentWebhookRequest true "订阅信息"
// @Success 201 {object} util.Response
// @Router /api/webhook/payments [post]
func (c *PaymentController) PaymentWebhook(ctx *gin.Context) {
	var req service.PaymentWebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sub, err := c.Subs.ApplyPayment(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, sub)
}
