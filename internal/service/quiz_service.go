package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 生成的试卷在 Redis 中保留 24 小时，供服务端判分
const generatedQuizTTL = 24 * time.Hour

// 单次生成的题目数
const mcqCountPerQuiz = 5

type QuizService struct {
	Quota    *QuotaService
	Subs     *SubscriptionService
	AI       *AIService
	Progress *ProgressService
	Chapters ChapterFinder
	Redis    *redis.Client
}

func NewQuizService(quota *QuotaService, subs *SubscriptionService, ai *AIService, progress *ProgressService, chapters ChapterFinder, rdb *redis.Client) *QuizService {
	return &QuizService{Quota: quota, Subs: subs, AI: ai, Progress: progress, Chapters: chapters, Redis: rdb}
}

// Score 按答案原文逐题精确比对，无部分给分、不折叠大小写——
// 选项文本本身就是答案键，必须按位一致
func (s *QuizService) Score(questions []model.McqQuestion, submitted []string) model.QuizScoreResult {
	correct := 0
	for i, q := range questions {
		if i < len(submitted) && submitted[i] == q.Answer {
			correct++
		}
	}
	total := len(questions)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return model.QuizScoreResult{
		CorrectAnswers: correct,
		TotalQuestions: total,
		Percentage:     percentage,
	}
}

func generatedQuizKey(studentID, chapterID string) string {
	return fmt.Sprintf("quiz:%s:%s", studentID, chapterID)
}

// Generate 消费一个 mcq 单位并生成试卷，答案键缓存在服务端
func (s *QuizService) Generate(ctx context.Context, studentID, chapterID, learningPathID string, now time.Time) ([]model.McqQuestion, model.Usage, error) {
	chapter, err := s.Chapters.FindChapterByID(chapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.Usage{}, util.ErrChapterNotFound
	}
	if err != nil {
		return nil, model.Usage{}, err
	}

	sub, err := s.Subs.Resolve(ctx, studentID, learningPathID, now)
	if err != nil {
		return nil, model.Usage{}, err
	}
	limits := Limits(sub)

	usage, err := s.Quota.Peek(studentID, chapterID, model.ResourceMcq, limits, now)
	if err != nil {
		return nil, model.Usage{}, err
	}
	if usage.Remaining <= 0 {
		return nil, usage, util.ErrLimitExceeded
	}

	questions, err := s.AI.GenerateMcq(ctx, chapter.Content, mcqCountPerQuiz)
	if err != nil {
		return nil, model.Usage{}, err
	}

	usage, err = s.Quota.TryConsume(studentID, chapterID, model.ResourceMcq, limits, now)
	if err != nil {
		return nil, usage, err
	}

	s.cacheQuiz(ctx, &model.GeneratedQuiz{
		StudentID:   studentID,
		ChapterID:   chapterID,
		Questions:   questions,
		GeneratedAt: now,
	})
	return questions, usage, nil
}

func (s *QuizService) cacheQuiz(ctx context.Context, quiz *model.GeneratedQuiz) {
	if s.Redis == nil {
		return
	}
	if data, err := json.Marshal(quiz); err == nil {
		s.Redis.Set(ctx, generatedQuizKey(quiz.StudentID, quiz.ChapterID), data, generatedQuizTTL)
	}
}

// SubmitGenerated 服务端判分：取出缓存的试卷，比对后写入进度聚合器
func (s *QuizService) SubmitGenerated(ctx context.Context, studentID, chapterID string, answers []string) (*model.QuizScoreResult, *model.ChapterProgress, error) {
	if s.Redis == nil {
		return nil, nil, util.ErrQuizNotGenerated
	}
	data, err := s.Redis.Get(ctx, generatedQuizKey(studentID, chapterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil, util.ErrQuizNotGenerated
	}
	if err != nil {
		return nil, nil, err
	}

	var quiz model.GeneratedQuiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, nil, util.ErrQuizNotGenerated
	}

	result := s.Score(quiz.Questions, answers)
	progress, err := s.Progress.RecordQuiz(studentID, chapterID, result.TotalQuestions, result.CorrectAnswers)
	if err != nil {
		return nil, nil, err
	}
	return &result, progress, nil
}
