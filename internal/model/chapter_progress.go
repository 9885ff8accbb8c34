package model

import "time"

type ProgressState string

const (
	ProgressNotStarted ProgressState = "not_started"
	ProgressInProgress ProgressState = "in_progress"
	ProgressCompleted  ProgressState = "completed"
)

// ChapterProgress 章节进度，引擎是唯一写入方
// completed 是单向状态：首次 quizScore ≥ 75 时设置 completed_at，之后不再清除，
// 重考低分不会取消完成状态
// swagger:model ChapterProgress
type ChapterProgress struct {
	BaseModel
	StudentID      string        `gorm:"size:64;uniqueIndex:idx_progress_key;not null" json:"studentId"`
	ChapterID      string        `gorm:"type:varchar(36);uniqueIndex:idx_progress_key;not null" json:"chapterId"`
	LearningPathID string        `gorm:"type:varchar(36);index;not null" json:"learningPathId"`
	State          ProgressState `gorm:"type:enum('not_started','in_progress','completed');default:'in_progress'" json:"state"`
	// QuizScore 最近一次测验的百分比得分，未考过为 null
	QuizScore    *int `json:"quizScore"`
	QuizAttempts int  `gorm:"default:0" json:"quizAttempts"`
	// VideoWatchTime 累计观看秒数，只增不减（max 合并，容忍乱序/重复上报）
	VideoWatchTime int        `gorm:"default:0" json:"videoWatchTime"`
	VideoDuration  *int       `json:"videoDuration,omitempty"`
	CompletedAt    *time.Time `json:"completedAt"`
}

func (ChapterProgress) TableName() string {
	return "chapter_progress"
}

// MasteryThreshold 章节完成的测验分数门槛
const MasteryThreshold = 75

// WatchProgressCeiling 仅看视频可展示的进度上限，低于完成门槛，
// 避免未通过测验时进度条暗示已掌握
const WatchProgressCeiling = 70

// DisplayProgress 面向前端的进度百分比：
// 考过试以最近一次测验得分为准，否则按观看占比封顶展示
func (p *ChapterProgress) DisplayProgress() int {
	if p.QuizScore != nil {
		return *p.QuizScore
	}
	if p.VideoDuration == nil || *p.VideoDuration <= 0 {
		return 0
	}
	pct := p.VideoWatchTime * 100 / *p.VideoDuration
	if pct > WatchProgressCeiling {
		pct = WatchProgressCeiling
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}
