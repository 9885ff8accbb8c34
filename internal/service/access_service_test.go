package service

import (
	"context"
	"testing"
	"time"

	"edupath_backend/internal/model"
	"edupath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubPathReader struct {
	path     *model.LearningPath
	chapters map[uint][]string
}

func (s *stubPathReader) FindPathByID(id string) (*model.LearningPath, error) {
	if s.path == nil || s.path.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.path, nil
}

func (s *stubPathReader) ChapterIDsByModule(moduleID uint) ([]string, error) {
	return s.chapters[moduleID], nil
}

type stubProgressCounter struct {
	completed map[string]bool // chapterID → 该学生已完成
	started   map[string]bool
}

func (s *stubProgressCounter) CountCompleted(studentID string, chapterIDs []string) (int64, error) {
	var n int64
	for _, id := range chapterIDs {
		if s.completed[id] {
			n++
		}
	}
	return n, nil
}

func (s *stubProgressCounter) CountAny(studentID string, chapterIDs []string) (int64, error) {
	var n int64
	for _, id := range chapterIDs {
		if s.started[id] || s.completed[id] {
			n++
		}
	}
	return n, nil
}

type stubSubResolver struct {
	active *model.Subscription
	latest *model.Subscription
}

func (s *stubSubResolver) Resolve(ctx context.Context, studentID, learningPathID string, now time.Time) (*model.Subscription, error) {
	return s.active, nil
}

func (s *stubSubResolver) Latest(studentID, learningPathID string) (*model.Subscription, error) {
	return s.latest, nil
}

// 三个模块的路径，每个模块两章
func threeModulePath() *stubPathReader {
	return &stubPathReader{
		path: &model.LearningPath{
			UUIDBase: model.UUIDBase{ID: "path-1"},
			Modules: []model.Module{
				{BaseModel: model.BaseModel{ID: 1}},
				{BaseModel: model.BaseModel{ID: 2}},
				{BaseModel: model.BaseModel{ID: 3}},
			},
		},
		chapters: map[uint][]string{
			1: {"m1c1", "m1c2"},
			2: {"m2c1", "m2c2"},
			3: {"m3c1", "m3c2"},
		},
	}
}

func activeSub() *model.Subscription {
	now := time.Now().UTC()
	return &model.Subscription{
		StudentID:      "S1",
		LearningPathID: "path-1",
		ValidFrom:      now.Add(-24 * time.Hour),
		ValidUntil:     now.Add(24 * time.Hour),
	}
}

func TestFirstModuleAlwaysAccessible(t *testing.T) {
	svc := NewAccessService(threeModulePath(), &stubProgressCounter{}, &stubSubResolver{})

	// 既无订阅也无进度
	state, err := svc.CheckAccess(context.Background(), "S1", "path-1", 0, time.Now())
	require.NoError(t, err)
	assert.True(t, state.HasAccess)
	assert.False(t, state.IsLocked)
	assert.Nil(t, state.Reason)
	assert.Equal(t, 1, state.UnlockedModulesCount)
}

func TestModuleLockedByIncompletePredecessor(t *testing.T) {
	sub := activeSub()
	svc := NewAccessService(threeModulePath(), &stubProgressCounter{}, &stubSubResolver{active: sub, latest: sub})

	state, err := svc.CheckAccess(context.Background(), "S1", "path-1", 1, time.Now())
	require.NoError(t, err)
	assert.False(t, state.HasAccess)
	assert.True(t, state.IsLocked)
	require.NotNil(t, state.Reason)
	// 有订阅也跳不过前置模块
	assert.Equal(t, model.LockPreviousModuleIncomplete, *state.Reason)
}

func TestModuleUnlocksAfterOneChapterCompleted(t *testing.T) {
	sub := activeSub()
	progress := &stubProgressCounter{completed: map[string]bool{"m1c1": true}}
	svc := NewAccessService(threeModulePath(), progress, &stubSubResolver{active: sub, latest: sub})

	state, err := svc.CheckAccess(context.Background(), "S1", "path-1", 1, time.Now())
	require.NoError(t, err)
	assert.True(t, state.HasAccess)
	assert.Equal(t, 2, state.UnlockedModulesCount)

	// 模块 2 仍被模块 1 挡住
	state, err = svc.CheckAccess(context.Background(), "S1", "path-1", 2, time.Now())
	require.NoError(t, err)
	assert.True(t, state.IsLocked)
	require.NotNil(t, state.Reason)
	assert.Equal(t, model.LockPreviousModuleIncomplete, *state.Reason)
}

func TestLockReasonDistinguishesExpiredFromNeverSubscribed(t *testing.T) {
	progress := &stubProgressCounter{completed: map[string]bool{"m1c1": true}}

	// 从未订阅过
	svc := NewAccessService(threeModulePath(), progress, &stubSubResolver{})
	state, err := svc.CheckAccess(context.Background(), "S1", "path-1", 1, time.Now())
	require.NoError(t, err)
	require.NotNil(t, state.Reason)
	assert.Equal(t, model.LockSubscriptionRequired, *state.Reason)

	// 订阅过但已过期
	expired := activeSub()
	expired.ValidUntil = time.Now().Add(-time.Hour)
	svc = NewAccessService(threeModulePath(), progress, &stubSubResolver{latest: expired})
	state, err = svc.CheckAccess(context.Background(), "S1", "path-1", 1, time.Now())
	require.NoError(t, err)
	require.NotNil(t, state.Reason)
	assert.Equal(t, model.LockSubscriptionExpired, *state.Reason)
}

func TestStartedModuleSurvivesSubscriptionLapse(t *testing.T) {
	// 模块 1 已开始（有进度行），订阅随后过期
	progress := &stubProgressCounter{
		completed: map[string]bool{"m1c1": true},
		started:   map[string]bool{"m2c1": true},
	}
	expired := activeSub()
	expired.ValidUntil = time.Now().Add(-time.Hour)
	svc := NewAccessService(threeModulePath(), progress, &stubSubResolver{latest: expired})

	state, err := svc.CheckAccess(context.Background(), "S1", "path-1", 1, time.Now())
	require.NoError(t, err)
	assert.True(t, state.HasAccess)
	assert.False(t, state.IsLocked)
}

func TestUnlockedCountSpansAllModules(t *testing.T) {
	sub := activeSub()
	progress := &stubProgressCounter{completed: map[string]bool{"m1c1": true, "m2c2": true}}
	svc := NewAccessService(threeModulePath(), progress, &stubSubResolver{active: sub, latest: sub})

	// 查模块 0 也要数到后面已解锁的模块
	state, err := svc.CheckAccess(context.Background(), "S1", "path-1", 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, state.UnlockedModulesCount)
}

func TestCheckAccessUnknownTargets(t *testing.T) {
	svc := NewAccessService(threeModulePath(), &stubProgressCounter{}, &stubSubResolver{})

	_, err := svc.CheckAccess(context.Background(), "S1", "missing", 0, time.Now())
	assert.ErrorIs(t, err, util.ErrLearningPathNotFound)

	_, err = svc.CheckAccess(context.Background(), "S1", "path-1", 3, time.Now())
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.CheckAccess(context.Background(), "S1", "path-1", -1, time.Now())
	assert.ErrorIs(t, err, util.ErrNotFound)
}
