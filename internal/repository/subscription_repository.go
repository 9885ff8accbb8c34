package repository

import (
	"edupath_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.DB.Create(sub).Error
}

// FindActive 选取 now 落在 [valid_from, valid_until) 内的记录
// 区间重叠时（不变式被历史数据破坏的兜底）取 valid_from 最新的一条
func (r *SubscriptionRepository) FindActive(studentID, learningPathID string, now time.Time) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.DB.
		Where("student_id = ? AND learning_path_id = ? AND valid_from <= ? AND valid_until > ?",
			studentID, learningPathID, now, now).
		Order("valid_from desc").
		First(&sub).Error
	return &sub, err
}

// FindLatest 返回该组合下最近的一条订阅（含已过期），用于区分
// "从未订阅" 与 "订阅已过期"
func (r *SubscriptionRepository) FindLatest(studentID, learningPathID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.DB.
		Where("student_id = ? AND learning_path_id = ?", studentID, learningPathID).
		Order("valid_from desc").
		First(&sub).Error
	return &sub, err
}

func (r *SubscriptionRepository) ListByStudent(studentID string) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.DB.Where("student_id = ?", studentID).Order("valid_from desc").Find(&subs).Error
	return subs, err
}
