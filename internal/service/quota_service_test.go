package service

import (
	"sync/atomic"
	"testing"
	"time"

	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func testLimits() *model.PlanLimits {
	return &model.PlanLimits{PlanType: "standard", DailyChatLimit: 5, MonthlyMcqLimit: 10}
}

func TestTryConsumeRespectsLimit(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	limits := testLimits()

	for i := 1; i <= 5; i++ {
		usage, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, now)
		require.NoError(t, err)
		assert.Equal(t, i, usage.Used)
		assert.Equal(t, 5-i, usage.Remaining)
	}

	usage, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, now)
	assert.ErrorIs(t, err, util.ErrLimitExceeded)
	assert.Equal(t, 0, usage.Remaining)

	// 拒绝不产生写入：Peek 仍是 5/5
	peeked, err := svc.Peek("S1", "ch-1", model.ResourceChat, limits, now)
	require.NoError(t, err)
	assert.Equal(t, 5, peeked.Used)
}

func TestTryConsumeWithoutSubscription(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	now := time.Now().UTC()

	// 无订阅 ⇒ 额度为 0，首次消费即拒绝
	_, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, nil, now)
	assert.ErrorIs(t, err, util.ErrLimitExceeded)

	usage, err := svc.Peek("S1", "ch-1", model.ResourceChat, nil, now)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Used)
	assert.Equal(t, 0, usage.Limit)
	assert.Equal(t, 0, usage.Remaining)
}

func TestChatWindowResetsDaily(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	limits := testLimits()
	day1 := time.Date(2025, 3, 15, 23, 50, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, day1)
		require.NoError(t, err)
	}
	_, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, day1)
	require.ErrorIs(t, err, util.ErrLimitExceeded)

	// UTC 跨日后旧计数作废
	day2 := time.Date(2025, 3, 16, 0, 0, 1, 0, time.UTC)
	usage, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, day2)
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Used)
	assert.Equal(t, 4, usage.Remaining)
}

func TestMcqWindowSpansMonth(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	limits := testLimits()

	// 月初与月末同属一个窗口
	_, err := svc.TryConsume("S1", "ch-1", model.ResourceMcq, limits, time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	usage, err := svc.TryConsume("S1", "ch-1", model.ResourceMcq, limits, time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Used)

	// 下月重置
	usage, err = svc.TryConsume("S1", "ch-1", model.ResourceMcq, limits, time.Date(2025, 4, 1, 0, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Used)
}

func TestPeekDoesNotConsume(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	now := time.Now().UTC()
	limits := testLimits()

	for i := 0; i < 10; i++ {
		usage, err := svc.Peek("S1", "ch-1", model.ResourceChat, limits, now)
		require.NoError(t, err)
		assert.Equal(t, 0, usage.Used)
	}
}

func TestCountersAreIndependentPerKey(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	now := time.Now().UTC()
	limits := testLimits()

	_, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, now)
	require.NoError(t, err)

	// 不同章节、不同资源、不同学生互不影响
	for _, probe := range []struct {
		student, chapter string
		kind             model.ResourceKind
	}{
		{"S1", "ch-2", model.ResourceChat},
		{"S1", "ch-1", model.ResourceMcq},
		{"S2", "ch-1", model.ResourceChat},
	} {
		usage, err := svc.Peek(probe.student, probe.chapter, probe.kind, limits, now)
		require.NoError(t, err)
		assert.Equal(t, 0, usage.Used)
	}
}

func TestConcurrentConsumesNeverExceedLimit(t *testing.T) {
	svc := NewQuotaService(repository.NewMemoryUsageStore(), nil)
	now := time.Now().UTC()
	limits := testLimits()

	var granted, rejected int32
	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := svc.TryConsume("S1", "ch-1", model.ResourceChat, limits, now)
			if err == nil {
				atomic.AddInt32(&granted, 1)
				return nil
			}
			if err == util.ErrLimitExceeded {
				atomic.AddInt32(&rejected, 1)
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	// 恰好放行 limit 次，其余全部拒绝
	assert.Equal(t, int32(5), granted)
	assert.Equal(t, int32(45), rejected)
}
