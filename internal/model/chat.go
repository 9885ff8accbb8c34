package model

// ChatMessage AI 助教会话记录
// sessionId 为前端生成的不透明标识，仅用于分组一次会话
// swagger:model ChatMessage
type ChatMessage struct {
	BaseModel
	StudentID string `gorm:"size:64;index" json:"studentId"`
	SessionID string `gorm:"size:64;index" json:"sessionId"`
	ChapterID string `gorm:"type:varchar(36);index" json:"chapterId"`
	Role      string `gorm:"size:16;not null" json:"role"` // user / assistant
	Content   string `gorm:"type:longtext" json:"content"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
