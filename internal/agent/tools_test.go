package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot-go/internal/model"
	"taskpilot-go/internal/service"
)

// stubTaskService 以内存数据实现 service.TaskService，供工具测试使用。
type stubTaskService struct {
	tasks      []model.Task
	nextID     uint
	createErr  error
	listErr    error
	lastUserID string

	// 记录 UpdateTask 收到的字段，便于断言工具的参数映射
	lastTitle       *string
	lastDescription *string
	lastCompleted   *bool
}

func (s *stubTaskService) CreateTask(_ context.Context, userID, title, description string) (*model.Task, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.lastUserID = userID
	s.nextID++
	task := model.Task{ID: s.nextID, UserID: userID, Title: title, Description: description}
	s.tasks = append(s.tasks, task)
	return &task, nil
}

func (s *stubTaskService) ListTasks(_ context.Context, userID string, completed *bool) ([]model.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.lastUserID = userID
	s.lastCompleted = completed
	var out []model.Task
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if completed != nil && task.Completed != *completed {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (s *stubTaskService) GetTask(_ context.Context, userID string, id uint) (*model.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id && s.tasks[i].UserID == userID {
			return &s.tasks[i], nil
		}
	}
	return nil, service.ErrTaskNotFound
}

func (s *stubTaskService) UpdateTask(ctx context.Context, userID string, id uint, title, description *string, completed *bool) (*model.Task, error) {
	s.lastTitle = title
	s.lastDescription = description
	s.lastCompleted = completed
	task, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		task.Title = *title
	}
	if description != nil {
		task.Description = *description
	}
	if completed != nil {
		task.Completed = *completed
	}
	return task, nil
}

func (s *stubTaskService) DeleteTask(ctx context.Context, userID string, id uint) error {
	for i := range s.tasks {
		if s.tasks[i].ID == id && s.tasks[i].UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrTaskNotFound
}

func (s *stubTaskService) ToggleTask(ctx context.Context, userID string, id uint) (*model.Task, error) {
	task, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	return task, nil
}

func (s *stubTaskService) GetStats(_ context.Context, _ string) (*service.TaskStats, error) {
	return &service.TaskStats{}, nil
}

func TestTaskToolRegistry_CatalogOrder(t *testing.T) {
	registry := NewTaskToolRegistry(&stubTaskService{})

	defs := registry.Definitions()
	require.Len(t, defs, 5)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Function.Name)
	}
	assert.Equal(t, []string{"create_task", "list_tasks", "complete_task", "delete_task", "update_task"}, names)
}

func TestCreateTaskTool(t *testing.T) {
	svc := &stubTaskService{}
	tool := &createTaskTool{taskService: svc}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"title":"Buy milk","description":"2L"}`))

	require.NoError(t, err)
	assert.Equal(t, "Task created: ID=1, title='Buy milk'", result)
	require.Len(t, svc.tasks, 1)
	assert.Equal(t, "alice", svc.tasks[0].UserID)
	assert.Equal(t, "2L", svc.tasks[0].Description)
}

func TestCreateTaskTool_ServiceError(t *testing.T) {
	svc := &stubTaskService{createErr: &service.ValidationError{Field: "title", Message: "title cannot be empty or only whitespace"}}
	tool := &createTaskTool{taskService: svc}

	_, err := tool.Call(context.Background(), "alice", []byte(`{"title":"   "}`))

	require.Error(t, err)
}

func TestListTasksTool_Empty(t *testing.T) {
	tool := &listTasksTool{taskService: &stubTaskService{}}

	result, err := tool.Call(context.Background(), "alice", []byte(`{}`))

	require.NoError(t, err)
	assert.Equal(t, "No tasks found.", result)
}

func TestListTasksTool_Formatting(t *testing.T) {
	svc := &stubTaskService{
		tasks: []model.Task{
			{ID: 1, UserID: "alice", Title: "Buy milk", Completed: true},
			{ID: 2, UserID: "alice", Title: "Walk dog"},
			{ID: 3, UserID: "bob", Title: "Other tenant"},
		},
	}
	tool := &listTasksTool{taskService: svc}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"status":"all"}`))

	require.NoError(t, err)
	assert.Equal(t, "Tasks for alice (all):\n- [X] 1: Buy milk\n- [ ] 2: Walk dog", result)
}

func TestListTasksTool_StatusFilter(t *testing.T) {
	tests := []struct {
		status        string
		wantCompleted *bool
	}{
		{"all", nil},
		{"pending", boolPtr(false)},
		{"completed", boolPtr(true)},
		{"", nil}, // 缺省等同于 all
	}
	for _, tt := range tests {
		svc := &stubTaskService{}
		tool := &listTasksTool{taskService: svc}

		_, err := tool.Call(context.Background(), "alice", []byte(`{"status":"`+tt.status+`"}`))

		require.NoError(t, err, "status=%q", tt.status)
		if tt.wantCompleted == nil {
			assert.Nil(t, svc.lastCompleted, "status=%q", tt.status)
		} else {
			require.NotNil(t, svc.lastCompleted, "status=%q", tt.status)
			assert.Equal(t, *tt.wantCompleted, *svc.lastCompleted, "status=%q", tt.status)
		}
	}
}

func TestListTasksTool_InvalidStatus(t *testing.T) {
	tool := &listTasksTool{taskService: &stubTaskService{}}

	_, err := tool.Call(context.Background(), "alice", []byte(`{"status":"bogus"}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status filter")
}

func TestCompleteTaskTool(t *testing.T) {
	svc := &stubTaskService{tasks: []model.Task{{ID: 7, UserID: "alice", Title: "Buy milk"}}}
	tool := &completeTaskTool{taskService: svc}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"task_id":7}`))

	require.NoError(t, err)
	assert.Equal(t, "Task 7 marked as complete.", result)
	assert.True(t, svc.tasks[0].Completed)
	// 完成工具只设置 completed，不触碰其他字段
	assert.Nil(t, svc.lastTitle)
	assert.Nil(t, svc.lastDescription)
}

func TestCompleteTaskTool_NotFound(t *testing.T) {
	tool := &completeTaskTool{taskService: &stubTaskService{}}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"task_id":99}`))

	// 查不到任务对模型是一条普通结果，不是错误
	require.NoError(t, err)
	assert.Equal(t, "Task 99 not found.", result)
}

func TestDeleteTaskTool(t *testing.T) {
	svc := &stubTaskService{tasks: []model.Task{{ID: 3, UserID: "alice", Title: "Old"}}}
	tool := &deleteTaskTool{taskService: svc}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"task_id":3}`))

	require.NoError(t, err)
	assert.Equal(t, "Task 3 deleted successfully.", result)
	assert.Empty(t, svc.tasks)
}

func TestDeleteTaskTool_NotFound(t *testing.T) {
	svc := &stubTaskService{tasks: []model.Task{{ID: 3, UserID: "bob", Title: "Other tenant"}}}
	tool := &deleteTaskTool{taskService: svc}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"task_id":3}`))

	require.NoError(t, err)
	assert.Equal(t, "Task 3 not found.", result)
	// 他人的任务不受影响
	assert.Len(t, svc.tasks, 1)
}

func TestUpdateTaskTool(t *testing.T) {
	svc := &stubTaskService{tasks: []model.Task{{ID: 5, UserID: "alice", Title: "Old", Description: "keep"}}}
	tool := &updateTaskTool{taskService: svc}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"task_id":5,"title":"New title"}`))

	require.NoError(t, err)
	assert.Equal(t, "Task 5 updated successfully.", result)
	assert.Equal(t, "New title", svc.tasks[0].Title)
	// 未提供的字段以 nil 传递，保持原值
	assert.Nil(t, svc.lastDescription)
	assert.Nil(t, svc.lastCompleted)
	assert.Equal(t, "keep", svc.tasks[0].Description)
}

func TestUpdateTaskTool_NotFound(t *testing.T) {
	tool := &updateTaskTool{taskService: &stubTaskService{}}

	result, err := tool.Call(context.Background(), "alice", []byte(`{"task_id":42,"title":"x"}`))

	require.NoError(t, err)
	assert.Equal(t, "Task 42 not found.", result)
}

func TestToolCall_InvalidJSON(t *testing.T) {
	tool := &createTaskTool{taskService: &stubTaskService{}}

	_, err := tool.Call(context.Background(), "alice", []byte(`{`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func boolPtr(b bool) *bool { return &b }
