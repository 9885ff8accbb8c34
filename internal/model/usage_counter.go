package model

import "time"

type ResourceKind string

const (
	ResourceChat ResourceKind = "chat" // 按 UTC 日重置
	ResourceMcq  ResourceKind = "mcq"  // 按 UTC 月重置
)

// UsageCounter 每 (student, chapter, resourceKind) 一条活跃行
// window_start 与当前窗口不一致的行视为过期，使用时按 count=0 处理（惰性重置）
// swagger:model UsageCounter
type UsageCounter struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID    string       `gorm:"size:64;uniqueIndex:idx_usage_key;not null" json:"studentId"`
	ChapterID    string       `gorm:"type:varchar(36);uniqueIndex:idx_usage_key;not null" json:"chapterId"`
	ResourceKind ResourceKind `gorm:"type:enum('chat','mcq');uniqueIndex:idx_usage_key;not null" json:"resourceKind"`
	WindowStart  time.Time    `gorm:"not null" json:"windowStart"`
	Count        int          `gorm:"not null;default:0" json:"count"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (UsageCounter) TableName() string {
	return "usage_counters"
}

// Usage 面向前端的配额快照
type Usage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}
