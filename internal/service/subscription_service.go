package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 订阅解析结果缓存 60 秒：读路径允许短暂陈旧（见 quota_service 的消费侧兜底），
// 支付回调写入时会主动失效
const subscriptionCacheTTL = 60 * time.Second

// UserFinder 校验回调里的学生标识确实存在
type UserFinder interface {
	FindByStudentUniqueID(studentID string) (*model.User, error)
}

type SubscriptionService struct {
	Repo  *repository.SubscriptionRepository
	Users UserFinder
	Redis *redis.Client
}

func NewSubscriptionService(repo *repository.SubscriptionRepository, users UserFinder, rdb *redis.Client) *SubscriptionService {
	return &SubscriptionService{Repo: repo, Users: users, Redis: rdb}
}

func subscriptionCacheKey(studentID, learningPathID string) string {
	return fmt.Sprintf("sub:%s:%s", studentID, learningPathID)
}

// Resolve 返回当前激活的订阅，没有则返回 (nil, nil)
// 调用方必须把 nil 理解为"计量功能关闭"（额度为 0），而不是"不限量"
func (s *SubscriptionService) Resolve(ctx context.Context, studentID, learningPathID string, now time.Time) (*model.Subscription, error) {
	if s.Redis != nil {
		if cached := s.fromCache(ctx, studentID, learningPathID, now); cached != nil {
			return cached, nil
		}
	}

	sub, err := s.Repo.FindActive(studentID, learningPathID, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(sub); err == nil {
			s.Redis.Set(ctx, subscriptionCacheKey(studentID, learningPathID), data, subscriptionCacheTTL)
		}
	}
	return sub, nil
}

func (s *SubscriptionService) fromCache(ctx context.Context, studentID, learningPathID string, now time.Time) *model.Subscription {
	data, err := s.Redis.Get(ctx, subscriptionCacheKey(studentID, learningPathID)).Bytes()
	if err != nil {
		return nil
	}
	var sub model.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil
	}
	// TTL 内订阅也可能刚好走到 validUntil，读缓存后仍要校验区间
	if !sub.Active(now) {
		return nil
	}
	return &sub
}

// Latest 返回最近一条订阅记录（含已过期），没有任何记录时返回 (nil, nil)
// 用于区分锁定原因 subscription_required / subscription_expired
func (s *SubscriptionService) Latest(studentID, learningPathID string) (*model.Subscription, error) {
	sub, err := s.Repo.FindLatest(studentID, learningPathID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Limits 把订阅折算成额度，nil 订阅一律为 0
func Limits(sub *model.Subscription) *model.PlanLimits {
	if sub == nil {
		return &model.PlanLimits{}
	}
	return &model.PlanLimits{
		PlanType:        sub.PlanType,
		DailyChatLimit:  sub.DailyChatLimit,
		MonthlyMcqLimit: sub.MonthlyMcqLimit,
	}
}

type SubscriptionStatusResponse struct {
	HasSubscription bool                `json:"hasSubscription"`
	Subscription    *model.Subscription `json:"subscription,omitempty"`
}

func (s *SubscriptionService) Status(ctx context.Context, studentID, learningPathID string, now time.Time) (*SubscriptionStatusResponse, error) {
	sub, err := s.Resolve(ctx, studentID, learningPathID, now)
	if err != nil {
		return nil, err
	}
	return &SubscriptionStatusResponse{
		HasSubscription: sub != nil,
		Subscription:    sub,
	}, nil
}

type PaymentWebhookRequest struct {
	StudentID       string    `json:"studentId" binding:"required"`
	LearningPathID  string    `json:"learningPathId" binding:"required"`
	PlanType        string    `json:"planType" binding:"required"`
	PlanAmount      int       `json:"planAmount"`
	DailyChatLimit  int       `json:"dailyChatLimit" binding:"required"`
	MonthlyMcqLimit int       `json:"monthlyMcqLimit" binding:"required"`
	ValidFrom       time.Time `json:"validFrom" binding:"required"`
	ValidUntil      time.Time `json:"validUntil" binding:"required"`
}

// ApplyPayment 支付端回调落一条订阅记录（引擎只消费支付的"结果"），并失效解析缓存
// 未知学生直接拒绝，避免打错 studentId 的回调凭空造出孤儿订阅
func (s *SubscriptionService) ApplyPayment(ctx context.Context, req PaymentWebhookRequest) (*model.Subscription, error) {
	if s.Users != nil {
		if _, err := s.Users.FindByStudentUniqueID(req.StudentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrStudentNotFound
			}
			return nil, err
		}
	}

	sub := &model.Subscription{
		StudentID:       req.StudentID,
		LearningPathID:  req.LearningPathID,
		PlanType:        req.PlanType,
		PlanAmount:      req.PlanAmount,
		DailyChatLimit:  req.DailyChatLimit,
		MonthlyMcqLimit: req.MonthlyMcqLimit,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
	}
	if err := s.Repo.Create(sub); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := s.Redis.Del(ctx, subscriptionCacheKey(req.StudentID, req.LearningPathID)).Err(); err != nil {
			logger.Log.Warn("failed to invalidate subscription cache", zap.Error(err))
		}
	}
	return sub, nil
}
