package model

import "time"

// Subscription 由支付端写入，引擎侧只读
// 同一 (student, learningPath) 任一时刻最多一条生效记录；
// 历史数据中存在区间重叠时取 valid_from 最新的一条，绝不跨记录累加额度
// swagger:model Subscription
type Subscription struct {
	BaseModel
	StudentID       string    `gorm:"size:64;index:idx_sub_student_path;not null" json:"studentId"`
	LearningPathID  string    `gorm:"type:varchar(36);index:idx_sub_student_path;not null" json:"learningPathId"`
	PlanType        string    `gorm:"size:50;not null" json:"planType"`
	PlanAmount      int       `gorm:"default:0" json:"planAmount"`
	DailyChatLimit  int       `gorm:"not null" json:"dailyChatLimit"`
	MonthlyMcqLimit int       `gorm:"not null" json:"monthlyMcqLimit"`
	ValidFrom       time.Time `gorm:"index;not null" json:"validFrom"`
	ValidUntil      time.Time `gorm:"index;not null" json:"validUntil"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Active 判断 now 是否落在 [validFrom, validUntil)
func (s *Subscription) Active(now time.Time) bool {
	return !now.Before(s.ValidFrom) && now.Before(s.ValidUntil)
}

// PlanLimits 激活订阅解析出的额度，`nil` 订阅视为全部为 0
type PlanLimits struct {
	PlanType        string `json:"planType"`
	DailyChatLimit  int    `json:"dailyChatLimit"`
	MonthlyMcqLimit int    `json:"monthlyMcqLimit"`
}
