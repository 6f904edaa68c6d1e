package repository

import (
	"gorm.io/gorm"

	"taskpilot-go/internal/model"
)

// TaskRepository 接口定义了任务数据的持久化操作。
// 所有按 ID 的查询都必须同时按 UserID 过滤，"不存在"与"不属于该用户"
// 对调用方而言不可区分。
type TaskRepository interface {
	Create(task *model.Task) error
	FindByIDAndUser(id uint, userID string) (*model.Task, error)
	FindByUser(userID string, completed *bool) ([]model.Task, error)
	FindRecentByUser(userID string, limit int) ([]model.Task, error)
	CountByUser(userID string) (total int64, completedCount int64, err error)
	Update(task *model.Task) error
	Delete(task *model.Task) error
}

// taskRepository 是 TaskRepository 接口的 GORM 实现。
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建一个新的 TaskRepository 实例。
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create 在数据库中创建一个新的任务记录。
func (r *taskRepository) Create(task *model.Task) error {
	return r.db.Create(task).Error
}

// FindByIDAndUser 在所有者范围内查找一个任务。
func (r *taskRepository) FindByIDAndUser(id uint, userID string) (*model.Task, error) {
	var task model.Task
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByUser 检索用户的任务列表，按创建时间倒序排列。
// completed 为 nil 时不过滤完成状态。
func (r *taskRepository) FindByUser(userID string, completed *bool) ([]model.Task, error) {
	var tasks []model.Task
	query := r.db.Where("user_id = ?", userID)
	if completed != nil {
		query = query.Where("completed = ?", *completed)
	}
	err := query.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// FindRecentByUser 检索用户最近更新的若干任务，用于仪表盘统计。
func (r *taskRepository) FindRecentByUser(userID string, limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// CountByUser 统计用户的任务总数和已完成数。
func (r *taskRepository) CountByUser(userID string) (int64, int64, error) {
	var total, completedCount int64
	if err := r.db.Model(&model.Task{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.Model(&model.Task{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&completedCount).Error; err != nil {
		return 0, 0, err
	}
	return total, completedCount, nil
}

// Update 更新数据库中一个已存在的任务记录。
func (r *taskRepository) Update(task *model.Task) error {
	return r.db.Save(task).Error
}

// Delete 从数据库中删除一个任务记录。
func (r *taskRepository) Delete(task *model.Task) error {
	return r.db.Delete(task).Error
}
