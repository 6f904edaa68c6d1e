package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot-go/internal/middleware"
	"taskpilot-go/internal/service"
)

// fakeChatService 记录调用参数并返回脚本化的结果。
type fakeChatService struct {
	conversationID uint
	reply          string
	err            error

	gotUserID         string
	gotContent        string
	gotConversationID *uint
}

func (s *fakeChatService) ProcessMessage(_ context.Context, userID, content string, conversationID *uint) (uint, string, error) {
	s.gotUserID = userID
	s.gotContent = content
	s.gotConversationID = conversationID
	if s.err != nil {
		return 0, "", s.err
	}
	return s.conversationID, s.reply, nil
}

func newChatRouter(svc service.ChatService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
	})
	router.POST("/api/chat", NewChatHandler(svc).Chat)
	return router
}

func TestChatHandler_NewConversation(t *testing.T) {
	svc := &fakeChatService{conversationID: 7, reply: "Task created."}
	router := newChatRouter(svc, "alice")

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"message": "create a task called Buy milk"})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.JSONEq(t, `{"conversationId":7,"response":"Task created."}`, string(env.Data))

	assert.Equal(t, "alice", svc.gotUserID)
	assert.Equal(t, "create a task called Buy milk", svc.gotContent)
	assert.Nil(t, svc.gotConversationID)
}

func TestChatHandler_ExistingConversation(t *testing.T) {
	svc := &fakeChatService{conversationID: 3, reply: "ok"}
	router := newChatRouter(svc, "alice")

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"conversationId": 3, "message": "and then?"})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.gotConversationID)
	assert.Equal(t, uint(3), *svc.gotConversationID)
}

func TestChatHandler_MissingMessage(t *testing.T) {
	router := newChatRouter(&fakeChatService{}, "alice")

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"conversationId": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_BlankMessage(t *testing.T) {
	svc := &fakeChatService{conversationID: 1, reply: "unused"}
	router := newChatRouter(svc, "alice")

	// 纯空白的消息不落库也不触发模型调用
	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"message": "   \t  "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.gotContent)
}

func TestChatHandler_MessageTrimmed(t *testing.T) {
	svc := &fakeChatService{conversationID: 1, reply: "ok"}
	router := newChatRouter(svc, "alice")

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"message": "  hello  "})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", svc.gotContent)
}

func TestChatHandler_ConversationNotFound(t *testing.T) {
	svc := &fakeChatService{err: service.ErrConversationNotFound}
	router := newChatRouter(svc, "alice")

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"conversationId": 42, "message": "hi"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatHandler_AgentFailure(t *testing.T) {
	svc := &fakeChatService{err: errors.New("agent execution failed: provider down")}
	router := newChatRouter(svc, "alice")

	w := doJSON(router, http.MethodPost, "/api/chat", gin.H{"message": "hi"})

	// 内部错误细节不应泄漏给客户端
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "provider down")
}
