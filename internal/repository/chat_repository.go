package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) Create(msg *model.ChatMessage) error {
	return r.DB.Create(msg).Error
}

// ListBySession 按时间顺序返回一次会话的全部消息
func (r *ChatRepository) ListBySession(sessionID string) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.DB.Where("session_id = ?", sessionID).Order("created_at asc").Find(&msgs).Error
	return msgs, err
}

// RecentHistory 返回会话最近 limit 条消息（时间正序），用于多轮对话上下文
func (r *ChatRepository) RecentHistory(sessionID string, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.DB.Where("session_id = ?", sessionID).
		Order("created_at desc").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// 反转为时间正序
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
