package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"taskpilot-go/internal/model"
	"taskpilot-go/internal/repository"
	"taskpilot-go/pkg/events"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 10000
)

// TaskStats 是仪表盘统计的结果。
type TaskStats struct {
	TotalTasks     int64        `json:"totalTasks"`
	CompletedTasks int64        `json:"completedTasks"`
	PendingTasks   int64        `json:"pendingTasks"`
	CompletionRate float64      `json:"completionRate"`
	RecentActivity []model.Task `json:"recentActivity"`
}

// TaskService 接口定义了所有与任务相关的业务操作。
// 每个操作的第一个参数（ctx 之后）都是已认证的用户身份，
// 查询一律在该所有者范围内执行。
type TaskService interface {
	CreateTask(ctx context.Context, userID, title, description string) (*model.Task, error)
	ListTasks(ctx context.Context, userID string, completed *bool) ([]model.Task, error)
	GetTask(ctx context.Context, userID string, id uint) (*model.Task, error)
	UpdateTask(ctx context.Context, userID string, id uint, title, description *string, completed *bool) (*model.Task, error)
	DeleteTask(ctx context.Context, userID string, id uint) error
	ToggleTask(ctx context.Context, userID string, id uint) (*model.Task, error)
	GetStats(ctx context.Context, userID string) (*TaskStats, error)
}

// taskService 是 TaskService 接口的实现。
type taskService struct {
	taskRepo repository.TaskRepository
	producer events.Producer
}

// NewTaskService 创建一个新的 TaskService 实例。
func NewTaskService(taskRepo repository.TaskRepository, producer events.Producer) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		producer: producer,
	}
}

// validateTitle 去除标题首尾空白并校验长度。
func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", &ValidationError{Field: "title", Message: "title cannot be empty or only whitespace"}
	}
	if len(trimmed) > maxTitleLength {
		return "", &ValidationError{Field: "title", Message: "title must be at most 200 characters"}
	}
	return trimmed, nil
}

// CreateTask 为用户创建一个新任务，completed 默认为 false。
func (s *taskService) CreateTask(ctx context.Context, userID, title, description string) (*model.Task, error) {
	trimmed, err := validateTitle(title)
	if err != nil {
		return nil, err
	}
	if len(description) > maxDescriptionLength {
		return nil, &ValidationError{Field: "description", Message: "description must be at most 10000 characters"}
	}

	task := &model.Task{
		UserID:      userID, // 来自 JWT，绝不来自请求体
		Title:       trimmed,
		Description: description,
		Completed:   false,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TaskCreated, task)
	return task, nil
}

// ListTasks 检索用户的任务列表。completed 为 nil 时返回全部。
func (s *taskService) ListTasks(_ context.Context, userID string, completed *bool) ([]model.Task, error) {
	tasks, err := s.taskRepo.FindByUser(userID, completed)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// GetTask 在所有者范围内检索单个任务。
func (s *taskService) GetTask(_ context.Context, userID string, id uint) (*model.Task, error) {
	return s.findOwned(userID, id)
}

// UpdateTask 更新任务中被提供的字段。nil 字段保持不变。
func (s *taskService) UpdateTask(ctx context.Context, userID string, id uint, title, description *string, completed *bool) (*model.Task, error) {
	task, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		trimmed, verr := validateTitle(*title)
		if verr != nil {
			return nil, verr
		}
		task.Title = trimmed
	}
	if description != nil {
		if len(*description) > maxDescriptionLength {
			return nil, &ValidationError{Field: "description", Message: "description must be at most 10000 characters"}
		}
		task.Description = *description
	}
	if completed != nil {
		task.Completed = *completed
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}

	if completed != nil && *completed {
		s.publish(ctx, events.TaskCompleted, task)
	} else {
		s.publish(ctx, events.TaskUpdated, task)
	}
	return task, nil
}

// DeleteTask 在所有者范围内永久删除一个任务。
func (s *taskService) DeleteTask(ctx context.Context, userID string, id uint) error {
	task, err := s.findOwned(userID, id)
	if err != nil {
		return err
	}
	if err := s.taskRepo.Delete(task); err != nil {
		return err
	}
	s.publish(ctx, events.TaskDeleted, task)
	return nil
}

// ToggleTask 翻转任务的完成状态。
func (s *taskService) ToggleTask(ctx context.Context, userID string, id uint) (*model.Task, error) {
	task, err := s.findOwned(userID, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}

	if task.Completed {
		s.publish(ctx, events.TaskCompleted, task)
	} else {
		s.publish(ctx, events.TaskUpdated, task)
	}
	return task, nil
}

// GetStats 计算用户的仪表盘统计数据。
func (s *taskService) GetStats(_ context.Context, userID string) (*TaskStats, error) {
	total, completedCount, err := s.taskRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}

	var rate float64
	if total > 0 {
		rate = math.Round(float64(completedCount)/float64(total)*1000) / 10
	}

	recent, err := s.taskRepo.FindRecentByUser(userID, 5)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []model.Task{}
	}

	return &TaskStats{
		TotalTasks:     total,
		CompletedTasks: completedCount,
		PendingTasks:   total - completedCount,
		CompletionRate: rate,
		RecentActivity: recent,
	}, nil
}

// findOwned 在所有者范围内查找任务，查不到统一返回 ErrTaskNotFound。
func (s *taskService) findOwned(userID string, id uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// publish 尽力而为地发布任务事件，失败仅记录日志，不影响业务请求。
func (s *taskService) publish(ctx context.Context, eventType events.TaskEventType, task *model.Task) {
	if s.producer == nil {
		return
	}
	s.producer.PublishTaskEvent(ctx, events.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID,
		UserID:     task.UserID,
		Title:      task.Title,
		OccurredAt: time.Now(),
	})
}
