package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskpilot-go/internal/middleware"
	"taskpilot-go/internal/service"
	"taskpilot-go/pkg/log"
)

// TaskHandler 负责处理所有与任务 CRUD 相关的 API 请求。
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler 创建一个新的 TaskHandler 实例。
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest 定义了创建任务 API 的请求体结构。
// user_id 绝不出现在请求体中，始终来自已认证的 token。
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// UpdateTaskRequest 定义了更新任务 API 的请求体结构。
// 所有字段均为可选，nil 字段保持原值不变。
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// List 处理任务列表请求，支持按完成状态过滤。
func (h *TaskHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	var completed *bool
	switch status := c.Query("status"); status {
	case "":
		// 不过滤
	case "completed":
		v := true
		completed = &v
	case "active":
		v := false
		completed = &v
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的状态过滤器，可选值为 'completed' 或 'active'",
		})
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID, completed)
	if err != nil {
		log.Errorf("List tasks failed: userId=%s, err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取任务列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": tasks})
}

// Create 处理创建任务的请求。
func (h *TaskHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：标题不能为空",
		})
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req.Title, req.Description)
	if err != nil {
		h.writeError(c, userID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": task})
}

// Get 处理获取单个任务的请求。
func (h *TaskHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": task})
}

// Update 处理更新任务的请求。
func (h *TaskHandler) Update(c *gin.Context) {
	userID := middleware.UserID(c)
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载",
		})
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, id, req.Title, req.Description, req.Completed)
	if err != nil {
		h.writeError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": task})
}

// Delete 处理删除任务的请求。
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, userID, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleComplete 处理翻转任务完成状态的请求。
func (h *TaskHandler) ToggleComplete(c *gin.Context) {
	userID := middleware.UserID(c)
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.taskService.ToggleTask(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": task})
}

// Stats 处理仪表盘统计的请求。
func (h *TaskHandler) Stats(c *gin.Context) {
	userID := middleware.UserID(c)

	stats, err := h.taskService.GetStats(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("Get task stats failed: userId=%s, err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取统计数据失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": stats})
}

// parseID 从路径参数中解析任务 ID，非法时写出 400 并返回 false。
func (h *TaskHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的任务 ID",
		})
		return 0, false
	}
	return uint(id), true
}

// writeError 将业务层错误映射为 HTTP 响应。
// "不存在"与"不属于当前用户"统一为 404。
func (h *TaskHandler) writeError(c *gin.Context, userID string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": "Task not found",
		})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": verr.Message,
			"data":    gin.H{"field": verr.Field},
		})
	default:
		log.Errorf("Task operation failed: userId=%s, err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "服务器内部错误",
		})
	}
}
