package model

import "time"

// Conversation 代表一个用户与助手之间的聊天会话。
// UpdatedAt 在每次追加消息后推进，用于按最近活跃排序。
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Conversation) TableName() string {
	return "conversations"
}

// MessageRole 是消息角色的封闭枚举。
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message 代表会话中的一条消息，创建后不可变（仅追加日志）。
// UserID 冗余存储会话所有者，写入时必须与所属会话的所有者一致。
type Message struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UserID         string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	ConversationID uint        `gorm:"not null;index" json:"conversationId"`
	Role           MessageRole `gorm:"type:varchar(16);not null" json:"role"`
	Content        string      `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time   `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Message) TableName() string {
	return "messages"
}
