package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/monitoring"
	"errors"
	"time"
)

// UsageStore 配额计数器的存取接口
// 数据库实现（repository.UsageRepository）依赖行锁做单 key 线性化，
// 单实例部署可换 repository.MemoryUsageStore，语义一致
type UsageStore interface {
	Get(studentID, chapterID string, kind model.ResourceKind) (*model.UsageCounter, error)
	TryConsume(studentID, chapterID string, kind model.ResourceKind, windowStart time.Time, limit int) (int, error)
}

// QuotaService 计量 chat/mcq 两类 AI 资源
// 窗口过期依赖"当前时间 vs 行内 window_start"的惰性比较，没有定时重置任务
type QuotaService struct {
	Store UsageStore
	Subs  *SubscriptionService
}

func NewQuotaService(store UsageStore, subs *SubscriptionService) *QuotaService {
	return &QuotaService{Store: store, Subs: subs}
}

// windowStartFor chat 按 UTC 日，mcq 按 UTC 月
func windowStartFor(kind model.ResourceKind, now time.Time) time.Time {
	if kind == model.ResourceMcq {
		return util.MonthlyWindowStart(now)
	}
	return util.DailyWindowStart(now)
}

func limitFor(kind model.ResourceKind, limits *model.PlanLimits) int {
	if limits == nil {
		return 0
	}
	if kind == model.ResourceMcq {
		return limits.MonthlyMcqLimit
	}
	return limits.DailyChatLimit
}

// Peek 只读快照：过期窗口按 used=0 计，不做任何写入
func (s *QuotaService) Peek(studentID, chapterID string, kind model.ResourceKind, limits *model.PlanLimits, now time.Time) (model.Usage, error) {
	limit := limitFor(kind, limits)
	window := windowStartFor(kind, now)

	counter, err := s.Store.Get(studentID, chapterID, kind)
	if err != nil {
		return model.Usage{}, err
	}

	used := 0
	if counter != nil && counter.WindowStart.Equal(window) {
		used = counter.Count
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return model.Usage{Used: used, Limit: limit, Remaining: remaining}, nil
}

// TryConsume 原子地消费一个单位，额度耗尽返回 util.ErrLimitExceeded 且不产生任何写入
func (s *QuotaService) TryConsume(studentID, chapterID string, kind model.ResourceKind, limits *model.PlanLimits, now time.Time) (model.Usage, error) {
	limit := limitFor(kind, limits)
	window := windowStartFor(kind, now)

	count, err := s.Store.TryConsume(studentID, chapterID, kind, window, limit)
	if errors.Is(err, util.ErrLimitExceeded) {
		monitoring.QuotaConsumeCounter.WithLabelValues(string(kind), "rejected").Inc()
		return model.Usage{Used: limit, Limit: limit, Remaining: 0}, util.ErrLimitExceeded
	}
	if err != nil {
		return model.Usage{}, err
	}

	monitoring.QuotaConsumeCounter.WithLabelValues(string(kind), "consumed").Inc()
	return model.Usage{Used: count, Limit: limit, Remaining: limit - count}, nil
}

// ChapterUsageResponse /api/usage/chapter-status 的响应体
type ChapterUsageResponse struct {
	HasSubscription bool        `json:"hasSubscription"`
	PlanType        string      `json:"planType,omitempty"`
	ChatUsage       model.Usage `json:"chatUsage"`
	McqUsage        model.Usage `json:"mcqUsage"`
}

// ChapterStatus 前端播放器轮询的配额快照（chat + mcq 一次取齐）
func (s *QuotaService) ChapterStatus(ctx context.Context, studentID, chapterID, learningPathID string, now time.Time) (*ChapterUsageResponse, error) {
	sub, err := s.Subs.Resolve(ctx, studentID, learningPathID, now)
	if err != nil {
		return nil, err
	}
	limits := Limits(sub)

	chatUsage, err := s.Peek(studentID, chapterID, model.ResourceChat, limits, now)
	if err != nil {
		return nil, err
	}
	mcqUsage, err := s.Peek(studentID, chapterID, model.ResourceMcq, limits, now)
	if err != nil {
		return nil, err
	}

	return &ChapterUsageResponse{
		HasSubscription: sub != nil,
		PlanType:        limits.PlanType,
		ChatUsage:       chatUsage,
		McqUsage:        mcqUsage,
	}, nil
}
