package model

import "time"

// Task 对应于数据库中的 'tasks' 表。
// 每个任务归属于唯一的用户，所有查询必须按 UserID 过滤以实现数据隔离。
type Task struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// UserID 来自 JWT 的 sub 声明，绝不来自请求体。
	UserID      string    `gorm:"type:varchar(36);not null;index;index:idx_task_user_completed,priority:1" json:"userId"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Completed   bool      `gorm:"not null;default:false;index:idx_task_user_completed,priority:2" json:"completed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Task) TableName() string {
	return "tasks"
}
