package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"taskpilot-go/internal/model"
)

// ConversationRepository 接口定义了会话数据的持久化操作。
type ConversationRepository interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	FindByIDAndUser(ctx context.Context, id uint, userID string) (*model.Conversation, error)
	FindByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	Touch(ctx context.Context, id uint, userID string) error
}

// conversationRepository 是 ConversationRepository 接口的 GORM 实现。
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 在数据库中创建一个新的会话记录。
func (r *conversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// FindByIDAndUser 在所有者范围内查找一个会话。
func (r *conversationRepository) FindByIDAndUser(ctx context.Context, id uint, userID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conversation).Error
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindByUser 检索用户的所有会话，按最近活跃时间倒序排列。
func (r *conversationRepository) FindByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// Touch 推进会话的最近活跃时间戳。
func (r *conversationRepository) Touch(ctx context.Context, id uint, userID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("updated_at", time.Now()).Error
}
