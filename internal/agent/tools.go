package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"taskpilot-go/internal/service"
)

// NewTaskToolRegistry 装配任务领域的全部五个工具。
func NewTaskToolRegistry(taskService service.TaskService) *Registry {
	return NewRegistry(
		&createTaskTool{taskService: taskService},
		&listTasksTool{taskService: taskService},
		&completeTaskTool{taskService: taskService},
		&deleteTaskTool{taskService: taskService},
		&updateTaskTool{taskService: taskService},
	)
}

// userIDProperty 是所有工具共有的身份参数 schema。
// 模型会看到这个参数，但执行时其取值始终被认证身份覆盖。
var userIDProperty = jsonschema.Definition{
	Type:        jsonschema.String,
	Description: "The ID of the user.",
}

// createTaskTool 创建一个新任务。
type createTaskTool struct {
	taskService service.TaskService
}

func (t *createTaskTool) Name() string { return "create_task" }

func (t *createTaskTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Create a new task for the user.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"user_id":     userIDProperty,
					"title":       {Type: jsonschema.String, Description: "The title of the task."},
					"description": {Type: jsonschema.String, Description: "Optional description."},
				},
				Required: []string{"user_id", "title"},
			},
		},
	}
}

func (t *createTaskTool) Call(ctx context.Context, userID string, rawArgs []byte) (string, error) {
	var args struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	task, err := t.taskService.CreateTask(ctx, userID, args.Title, args.Description)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Task created: ID=%d, title='%s'", task.ID, task.Title), nil
}

// listTasksTool 列出用户的任务，支持 all/pending/completed 过滤。
type listTasksTool struct {
	taskService service.TaskService
}

func (t *listTasksTool) Name() string { return "list_tasks" }

func (t *listTasksTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "List tasks for a user.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"user_id": userIDProperty,
					"status": {
						Type:        jsonschema.String,
						Description: "Filter by status (all, pending, completed).",
						Enum:        []string{"all", "pending", "completed"},
					},
				},
				Required: []string{"user_id"},
			},
		},
	}
}

func (t *listTasksTool) Call(ctx context.Context, userID string, rawArgs []byte) (string, error) {
	var args struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	status := args.Status
	if status == "" {
		status = "all"
	}
	var completed *bool
	switch status {
	case "all":
		// 不过滤
	case "pending":
		f := false
		completed = &f
	case "completed":
		tr := true
		completed = &tr
	default:
		return "", fmt.Errorf("invalid status filter: %s", status)
	}

	tasks, err := t.taskService.ListTasks(ctx, userID, completed)
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "No tasks found.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tasks for %s (%s):", userID, status)
	for _, task := range tasks {
		mark := " "
		if task.Completed {
			mark = "X"
		}
		fmt.Fprintf(&b, "\n- [%s] %d: %s", mark, task.ID, task.Title)
	}
	return b.String(), nil
}

// completeTaskTool 将任务标记为已完成。
type completeTaskTool struct {
	taskService service.TaskService
}

func (t *completeTaskTool) Name() string { return "complete_task" }

func (t *completeTaskTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Mark a task as complete.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"user_id": userIDProperty,
					"task_id": {Type: jsonschema.Integer, Description: "The ID of the task to complete."},
				},
				Required: []string{"user_id", "task_id"},
			},
		},
	}
}

func (t *completeTaskTool) Call(ctx context.Context, userID string, rawArgs []byte) (string, error) {
	var args struct {
		TaskID uint `json:"task_id"`
	}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	done := true
	_, err := t.taskService.UpdateTask(ctx, userID, args.TaskID, nil, nil, &done)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return fmt.Sprintf("Task %d not found.", args.TaskID), nil
		}
		return "", err
	}
	return fmt.Sprintf("Task %d marked as complete.", args.TaskID), nil
}

// deleteTaskTool 删除一个任务。
type deleteTaskTool struct {
	taskService service.TaskService
}

func (t *deleteTaskTool) Name() string { return "delete_task" }

func (t *deleteTaskTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Delete a task.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"user_id": userIDProperty,
					"task_id": {Type: jsonschema.Integer, Description: "The ID of the task to delete."},
				},
				Required: []string{"user_id", "task_id"},
			},
		},
	}
}

func (t *deleteTaskTool) Call(ctx context.Context, userID string, rawArgs []byte) (string, error) {
	var args struct {
		TaskID uint `json:"task_id"`
	}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	err := t.taskService.DeleteTask(ctx, userID, args.TaskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return fmt.Sprintf("Task %d not found.", args.TaskID), nil
		}
		return "", err
	}
	return fmt.Sprintf("Task %d deleted successfully.", args.TaskID), nil
}

// updateTaskTool 更新任务的标题或描述。
type updateTaskTool struct {
	taskService service.TaskService
}

func (t *updateTaskTool) Name() string { return "update_task" }

func (t *updateTaskTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: "Update a task's title or description.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"user_id":     userIDProperty,
					"task_id":     {Type: jsonschema.Integer, Description: "The ID of the task to update."},
					"title":       {Type: jsonschema.String, Description: "New title."},
					"description": {Type: jsonschema.String, Description: "New description."},
				},
				Required: []string{"user_id", "task_id"},
			},
		},
	}
}

func (t *updateTaskTool) Call(ctx context.Context, userID string, rawArgs []byte) (string, error) {
	var args struct {
		TaskID      uint    `json:"task_id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	_, err := t.taskService.UpdateTask(ctx, userID, args.TaskID, args.Title, args.Description, nil)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return fmt.Sprintf("Task %d not found.", args.TaskID), nil
		}
		return "", err
	}
	return fmt.Sprintf("Task %d updated successfully.", args.TaskID), nil
}
