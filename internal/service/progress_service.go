package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/monitoring"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
)

// ProgressStore 章节进度的存取接口，测试用内存桩替换
type ProgressStore interface {
	Find(studentID, chapterID string) (*model.ChapterProgress, error)
	Create(p *model.ChapterProgress) error
	Save(p *model.ChapterProgress) error
	ListByStudent(studentID string) ([]model.ChapterProgress, error)
	ListByStudentAndPath(studentID, learningPathID string) ([]model.ChapterProgress, error)
}

// ChapterFinder 校验章节存在并取视频时长
type ChapterFinder interface {
	FindChapterByID(id string) (*model.Chapter, error)
}

// ProgressService 聚合测验得分与视频观看两类进度信号
// 完成判定只认测验：quizScore ≥ MasteryThreshold 触发唯一一条状态边
// in_progress → completed，completed_at 一经设置不再改动
type ProgressService struct {
	Store    ProgressStore
	Chapters ChapterFinder
}

func NewProgressService(store ProgressStore, chapters ChapterFinder) *ProgressService {
	return &ProgressService{Store: store, Chapters: chapters}
}

func (s *ProgressService) loadOrCreate(studentID string, chapter *model.Chapter) (*model.ChapterProgress, bool, error) {
	p, err := s.Store.Find(studentID, chapter.ID)
	if err != nil {
		return nil, false, err
	}
	if p != nil {
		return p, false, nil
	}
	p = &model.ChapterProgress{
		StudentID:      studentID,
		ChapterID:      chapter.ID,
		LearningPathID: chapter.LearningPathID,
		State:          model.ProgressInProgress,
	}
	return p, true, nil
}

func (s *ProgressService) findChapter(chapterID string) (*model.Chapter, error) {
	chapter, err := s.Chapters.FindChapterByID(chapterID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrChapterNotFound
	}
	if err != nil {
		return nil, err
	}
	return chapter, nil
}

// RecordQuiz 记录一次测验。最近一次得分就是"当前"得分，不做跨次平均；
// 完成状态是粘性的：达标后再考低分不会取消 completed。
// 入库得分统一按 round(correct/total*100) 重算，不信任客户端自报的百分比
func (s *ProgressService) RecordQuiz(studentID, chapterID string, totalQuestions, correctAnswers int) (*model.ChapterProgress, error) {
	if totalQuestions <= 0 || correctAnswers < 0 || correctAnswers > totalQuestions {
		return nil, util.ErrInvalidQuizResult
	}
	score := int(math.Round(float64(correctAnswers) / float64(totalQuestions) * 100))

	chapter, err := s.findChapter(chapterID)
	if err != nil {
		return nil, err
	}

	p, fresh, err := s.loadOrCreate(studentID, chapter)
	if err != nil {
		return nil, err
	}

	p.QuizScore = &score
	p.QuizAttempts++

	if p.CompletedAt == nil && score >= model.MasteryThreshold {
		now := time.Now()
		p.CompletedAt = &now
		p.State = model.ProgressCompleted
		monitoring.ChapterCompletionCounter.Inc()
	}

	if fresh {
		err = s.Store.Create(p)
	} else {
		err = s.Store.Save(p)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RecordVideoWatch 观看时长单调合并：迟到/重复上报永远不会回退进度
// 客户端按约 30 秒批量上报，丢一条只会延迟进度，不会损坏进度
func (s *ProgressService) RecordVideoWatch(studentID, chapterID string, cumulativeWatchTime int, videoDuration *int) (*model.ChapterProgress, error) {
	chapter, err := s.findChapter(chapterID)
	if err != nil {
		return nil, err
	}

	p, fresh, err := s.loadOrCreate(studentID, chapter)
	if err != nil {
		return nil, err
	}

	if cumulativeWatchTime > p.VideoWatchTime {
		p.VideoWatchTime = cumulativeWatchTime
	}
	if videoDuration != nil && *videoDuration > 0 {
		p.VideoDuration = videoDuration
	} else if p.VideoDuration == nil && chapter.VideoDuration != nil {
		p.VideoDuration = chapter.VideoDuration
	}

	if fresh {
		err = s.Store.Create(p)
	} else {
		err = s.Store.Save(p)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ChapterProgressView 面向前端的进度行
type ChapterProgressView struct {
	ChapterID       string     `json:"moduleId"` // 历史字段名，前端以 moduleId 指代章节
	LearningPathID  string     `json:"learningPathId"`
	State           string     `json:"state"`
	QuizScore       *int       `json:"quizScore"`
	QuizAttempts    int        `json:"quizAttempts"`
	VideoWatchTime  int        `json:"videoWatchTime"`
	DisplayProgress int        `json:"displayProgress"`
	CompletedAt     *time.Time `json:"completedAt"`
}

// ListProgress 返回学生的章节进度，learningPathID 非空时按路径过滤
func (s *ProgressService) ListProgress(studentID, learningPathID string) ([]ChapterProgressView, error) {
	var rows []model.ChapterProgress
	var err error
	if learningPathID != "" {
		rows, err = s.Store.ListByStudentAndPath(studentID, learningPathID)
	} else {
		rows, err = s.Store.ListByStudent(studentID)
	}
	if err != nil {
		return nil, err
	}
	views := make([]ChapterProgressView, len(rows))
	for i, p := range rows {
		views[i] = ChapterProgressView{
			ChapterID:       p.ChapterID,
			LearningPathID:  p.LearningPathID,
			State:           string(p.State),
			QuizScore:       p.QuizScore,
			QuizAttempts:    p.QuizAttempts,
			VideoWatchTime:  p.VideoWatchTime,
			DisplayProgress: p.DisplayProgress(),
			CompletedAt:     p.CompletedAt,
		}
	}
	return views, nil
}
