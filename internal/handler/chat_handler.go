package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskpilot-go/internal/middleware"
	"taskpilot-go/internal/service"
	"taskpilot-go/pkg/log"
)

// ChatHandler 负责处理聊天相关的 API 请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest 定义了聊天 API 的请求体结构。
// conversationId 为空时创建新会话。
type ChatRequest struct {
	ConversationID *uint  `json:"conversationId"`
	Message        string `json:"message" binding:"required"`
}

// ChatResponse 定义了聊天 API 的响应数据结构。
type ChatResponse struct {
	ConversationID uint   `json:"conversationId"`
	Response       string `json:"response"`
}

// Chat 处理一轮聊天请求并返回代理的回复。
// 用户身份由认证中间件从 token 中提取。
func (h *ChatHandler) Chat(c *gin.Context) {
	userID := middleware.UserID(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：message 不能为空",
		})
		return
	}

	// 纯空白的消息与缺失的消息同样无效
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：message 不能为空",
		})
		return
	}

	conversationID, reply, err := h.chatService.ProcessMessage(c.Request.Context(), userID, message, req.ConversationID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    http.StatusNotFound,
				"message": "Conversation not found",
			})
			return
		}
		log.Errorf("Chat turn failed: userId=%s, err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "服务器内部错误",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": ChatResponse{
			ConversationID: conversationID,
			Response:       reply,
		},
	})
}
