package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskpilot-go/internal/middleware"
	"taskpilot-go/internal/service"
	"taskpilot-go/pkg/log"
)

// ConversationHandler 处理与会话列表相关的 API 请求。
type ConversationHandler struct {
	conversationService service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler 实例。
func NewConversationHandler(conversationService service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List 处理获取用户会话列表的请求。
func (h *ConversationHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)

	conversations, err := h.conversationService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		log.Errorf("List conversations failed: userId=%s, err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取会话列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": conversations})
}
