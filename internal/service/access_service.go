package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

// PathReader 访问检查需要的学习路径只读视图
type PathReader interface {
	FindPathByID(id string) (*model.LearningPath, error)
	ChapterIDsByModule(moduleID uint) ([]string, error)
}

// ProgressCounter 模块内章节进度的聚合计数
type ProgressCounter interface {
	CountCompleted(studentID string, chapterIDs []string) (int64, error)
	CountAny(studentID string, chapterIDs []string) (int64, error)
}

// SubscriptionResolver 解锁策略对订阅状态的依赖
type SubscriptionResolver interface {
	Resolve(ctx context.Context, studentID, learningPathID string, now time.Time) (*model.Subscription, error)
	Latest(studentID, learningPathID string) (*model.Subscription, error)
}

// AccessService 模块按序解锁：
// 模块 0 永远可进；模块 i 需要模块 i-1 至少一章完成 且 订阅有效。
// 订阅失效后，已经开始过的模块保持只读可见，但不再解锁新模块——
// 学生不会为没到达的内容付费，也不能只靠订阅跳级
type AccessService struct {
	Paths    PathReader
	Progress ProgressCounter
	Subs     SubscriptionResolver
}

func NewAccessService(paths PathReader, progress ProgressCounter, subs SubscriptionResolver) *AccessService {
	return &AccessService{Paths: paths, Progress: progress, Subs: subs}
}

// CheckAccess 计算 moduleIndex（0 起）对该学生的可达性
func (s *AccessService) CheckAccess(ctx context.Context, studentID, learningPathID string, moduleIndex int, now time.Time) (*model.ModuleAccessState, error) {
	path, err := s.Paths.FindPathByID(learningPathID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLearningPathNotFound
	}
	if err != nil {
		return nil, err
	}
	if moduleIndex < 0 || moduleIndex >= len(path.Modules) {
		return nil, util.ErrNotFound
	}

	sub, err := s.Subs.Resolve(ctx, studentID, learningPathID, now)
	if err != nil {
		return nil, err
	}
	subActive := sub != nil

	// 逐模块推进；unlockedModulesCount 要数全量，不能在目标模块提前停
	unlocked := 0
	var target *model.ModuleAccessState
	prevCompleted := true // 模块 0 没有前置
	for i := range path.Modules {
		chapterIDs, err := s.Paths.ChapterIDsByModule(path.Modules[i].ID)
		if err != nil {
			return nil, err
		}

		state, err := s.moduleState(studentID, learningPathID, chapterIDs, i, prevCompleted, subActive)
		if err != nil {
			return nil, err
		}
		if state.HasAccess {
			unlocked++
		}
		if i == moduleIndex {
			target = state
		}

		completed, err := s.Progress.CountCompleted(studentID, chapterIDs)
		if err != nil {
			return nil, err
		}
		prevCompleted = completed > 0
	}

	target.UnlockedModulesCount = unlocked
	return target, nil
}

func (s *AccessService) moduleState(studentID, learningPathID string, chapterIDs []string, index int, prevCompleted, subActive bool) (*model.ModuleAccessState, error) {
	state := &model.ModuleAccessState{ModuleIndex: index}

	if index == 0 {
		state.HasAccess = true
		return state, nil
	}

	if !prevCompleted {
		reason := model.LockPreviousModuleIncomplete
		state.IsLocked = true
		state.Reason = &reason
		return state, nil
	}

	if subActive {
		state.HasAccess = true
		return state, nil
	}

	// 前置已完成但订阅失效：学生进入过的模块保留读权限
	started, err := s.Progress.CountAny(studentID, chapterIDs)
	if err != nil {
		return nil, err
	}
	if started > 0 {
		state.HasAccess = true
		return state, nil
	}

	latest, err := s.Subs.Latest(studentID, learningPathID)
	if err != nil {
		return nil, err
	}
	reason := model.LockSubscriptionRequired
	if latest != nil {
		reason = model.LockSubscriptionExpired
	}
	state.IsLocked = true
	state.Reason = &reason
	return state, nil
}
