package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 注入多轮对话上下文的历史条数上限
const chatHistoryDepth = 10

type ChatService struct {
	Quota    *QuotaService
	Subs     *SubscriptionService
	AI       *AIService
	Repo     *repository.ChatRepository
	Chapters ChapterFinder
}

func NewChatService(quota *QuotaService, subs *SubscriptionService, ai *AIService, repo *repository.ChatRepository, chapters ChapterFinder) *ChatService {
	return &ChatService{Quota: quota, Subs: subs, AI: ai, Repo: repo, Chapters: chapters}
}

type ChatRequest struct {
	Query           string `json:"query" binding:"required"`
	StudentUniqueID string `json:"studentUniqueId" binding:"required"`
	SessionID       string `json:"sessionId" binding:"required"`
	ChapterID       string `json:"chapterId" binding:"required"`
	LearningPathID  string `json:"learningPathId" binding:"required"`
	StudentData     string `json:"studentData"`
	Context         string `json:"context"`
}

// Send 一次 AI 对话：额度预检 → 调下游 → 原子提交消费 → 落转录
// 预检到提交之间的并发竞争由 TryConsume 兜底，双击重试不会超扣
func (s *ChatService) Send(ctx context.Context, req ChatRequest, now time.Time) (string, model.Usage, error) {
	chapter, err := s.Chapters.FindChapterByID(req.ChapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", model.Usage{}, util.ErrChapterNotFound
	}
	if err != nil {
		return "", model.Usage{}, err
	}

	sub, err := s.Subs.Resolve(ctx, req.StudentUniqueID, req.LearningPathID, now)
	if err != nil {
		return "", model.Usage{}, err
	}
	limits := Limits(sub)

	usage, err := s.Quota.Peek(req.StudentUniqueID, req.ChapterID, model.ResourceChat, limits, now)
	if err != nil {
		return "", model.Usage{}, err
	}
	if usage.Remaining <= 0 {
		return "", usage, util.ErrLimitExceeded
	}

	history, err := s.history(req.SessionID)
	if err != nil {
		// 历史拉取失败不阻断对话，降级为单轮
		logger.Log.Warn("failed to load chat history", zap.String("sessionId", req.SessionID), zap.Error(err))
		history = nil
	}

	chapterContext := req.Context
	if chapterContext == "" {
		chapterContext = chapter.Content
	}

	answer, err := s.AI.Chat(ctx, req.Query, chapterContext, history)
	if err != nil {
		return "", model.Usage{}, err
	}

	usage, err = s.Quota.TryConsume(req.StudentUniqueID, req.ChapterID, model.ResourceChat, limits, now)
	if err != nil {
		return "", usage, err
	}

	s.persist(req, answer)
	return answer, usage, nil
}

func (s *ChatService) history(sessionID string) ([]AIChatMessage, error) {
	msgs, err := s.Repo.RecentHistory(sessionID, chatHistoryDepth)
	if err != nil {
		return nil, err
	}
	history := make([]AIChatMessage, len(msgs))
	for i, m := range msgs {
		history[i] = AIChatMessage{Role: m.Role, Content: m.Content}
	}
	return history, nil
}

func (s *ChatService) persist(req ChatRequest, answer string) {
	rows := []*model.ChatMessage{
		{StudentID: req.StudentUniqueID, SessionID: req.SessionID, ChapterID: req.ChapterID, Role: "user", Content: req.Query},
		{StudentID: req.StudentUniqueID, SessionID: req.SessionID, ChapterID: req.ChapterID, Role: "assistant", Content: answer},
	}
	for _, row := range rows {
		if err := s.Repo.Create(row); err != nil {
			// 转录失败不影响已返回的回答
			logger.Log.Warn("failed to persist chat message", zap.Error(err))
			return
		}
	}
}

func (s *ChatService) History(sessionID string) ([]model.ChatMessage, error) {
	return s.Repo.ListBySession(sessionID)
}
