package repository

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository 持久化配额计数器
// TryConsume 必须做到按 (student, chapter, resourceKind) 行级线性化：
// 事务内 SELECT ... FOR UPDATE 锁住该行，检查与自增是同一个原子步骤，
// 并发双击重试不会在只剩 1 次额度时双双成功
type UsageRepository struct {
	DB *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{DB: db}
}

// Get 返回当前计数行，不存在时返回 (nil, nil)，不做任何写入
func (r *UsageRepository) Get(studentID, chapterID string, kind model.ResourceKind) (*model.UsageCounter, error) {
	var c model.UsageCounter
	err := r.DB.
		Where("student_id = ? AND chapter_id = ? AND resource_kind = ?", studentID, chapterID, kind).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// TryConsume 原子地校验并消费一个单位，成功返回新的计数值
// windowStart 与行内不一致时按过期处理：行就地重置为 {windowStart, 1}（惰性重置，无后台任务）
func (r *UsageRepository) TryConsume(studentID, chapterID string, kind model.ResourceKind, windowStart time.Time, limit int) (int, error) {
	count, err := r.tryConsumeOnce(studentID, chapterID, kind, windowStart, limit)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 两个首次请求同时 insert，输掉的一方重走一遍锁定路径
		return r.tryConsumeOnce(studentID, chapterID, kind, windowStart, limit)
	}
	return count, err
}

func (r *UsageRepository) tryConsumeOnce(studentID, chapterID string, kind model.ResourceKind, windowStart time.Time, limit int) (int, error) {
	var newCount int
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var c model.UsageCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND chapter_id = ? AND resource_kind = ?", studentID, chapterID, kind).
			First(&c).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if limit <= 0 {
				return util.ErrLimitExceeded
			}
			c = model.UsageCounter{
				StudentID:    studentID,
				ChapterID:    chapterID,
				ResourceKind: kind,
				WindowStart:  windowStart,
				Count:        1,
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
			newCount = 1
			return nil
		}
		if err != nil {
			return err
		}

		used := c.Count
		if !c.WindowStart.Equal(windowStart) {
			used = 0
		}
		if used >= limit {
			return util.ErrLimitExceeded
		}

		c.Count = used + 1
		c.WindowStart = windowStart
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		newCount = c.Count
		return nil
	})
	return newCount, err
}
