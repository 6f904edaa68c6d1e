package repository

import (
	"context"

	"gorm.io/gorm"

	"taskpilot-go/internal/model"
)

// MessageRepository 接口定义了消息数据的持久化操作。
// 消息是仅追加的日志，没有更新和删除操作。
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByConversation(ctx context.Context, conversationID uint, userID string, limit int) ([]model.Message, error)
}

// messageRepository 是 MessageRepository 接口的 GORM 实现。
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建一个新的 MessageRepository 实例。
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 追加一条消息记录。
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByConversation 按创建时间升序检索会话的消息历史。
// 创建时间相同时以 ID 作为稳定的次级排序键。
// limit 大于 0 时取升序前 N 条。
func (r *messageRepository) FindByConversation(ctx context.Context, conversationID uint, userID string, limit int) ([]model.Message, error) {
	var messages []model.Message
	query := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&messages).Error
	return messages, err
}
