package repository

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"sync"
	"time"
)

type usageKey struct {
	StudentID string
	ChapterID string
	Kind      model.ResourceKind
}

// MemoryUsageStore 单实例部署用的内存计数器，互斥锁保证单 key 串行
// 与 UsageRepository 暴露同一组操作，多实例部署必须换用数据库实现
type MemoryUsageStore struct {
	mu       sync.Mutex
	counters map[usageKey]*model.UsageCounter
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{counters: make(map[usageKey]*model.UsageCounter)}
}

func (s *MemoryUsageStore) Get(studentID, chapterID string, kind model.ResourceKind) (*model.UsageCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[usageKey{studentID, chapterID, kind}]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryUsageStore) TryConsume(studentID, chapterID string, kind model.ResourceKind, windowStart time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := usageKey{studentID, chapterID, kind}
	c, ok := s.counters[key]
	if !ok {
		if limit <= 0 {
			return 0, util.ErrLimitExceeded
		}
		s.counters[key] = &model.UsageCounter{
			StudentID:    studentID,
			ChapterID:    chapterID,
			ResourceKind: kind,
			WindowStart:  windowStart,
			Count:        1,
		}
		return 1, nil
	}

	used := c.Count
	if !c.WindowStart.Equal(windowStart) {
		used = 0
	}
	if used >= limit {
		return 0, util.ErrLimitExceeded
	}

	c.Count = used + 1
	c.WindowStart = windowStart
	return c.Count, nil
}
