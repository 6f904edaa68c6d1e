package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"

	"taskpilot-go/internal/model"
	"taskpilot-go/internal/repository"
	"taskpilot-go/pkg/log"
)

// AgentRunner 抽象了代理执行器：给定用户身份和对话记录，产生一条助手回复。
type AgentRunner interface {
	Run(ctx context.Context, userID string, messages []openai.ChatCompletionMessage) (string, error)
}

// ChatService 定义了聊天编排的接口。
type ChatService interface {
	// ProcessMessage 执行一轮端到端的聊天，返回会话 ID 和助手回复。
	ProcessMessage(ctx context.Context, userID, content string, conversationID *uint) (uint, string, error)
}

// chatService 是 ChatService 接口的实现。
type chatService struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	agentRunner      AgentRunner
	historyLimit     int
}

// NewChatService 创建一个新的 ChatService 实例。
// historyLimit 限制加载的历史消息条数（按创建时间升序取前 N 条）。
func NewChatService(conversationRepo repository.ConversationRepository, messageRepo repository.MessageRepository, agentRunner AgentRunner, historyLimit int) ChatService {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &chatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		agentRunner:      agentRunner,
		historyLimit:     historyLimit,
	}
}

// ProcessMessage 按固定顺序执行一轮聊天：
// 解析或创建会话 → 加载历史 → 持久化用户消息 → 构建对话记录 →
// 执行代理 → 持久化助手消息 → 推进会话时间戳。
//
// 每一步持久化都独立提交；用户消息在模型调用之前已经落库，
// 即使之后的模型调用失败也不会回滚。模型调用期间不持有任何数据库事务。
func (s *chatService) ProcessMessage(ctx context.Context, userID, content string, conversationID *uint) (uint, string, error) {
	// 1. 解析已有会话或创建新会话
	conversation, err := s.resolveConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, "", err
	}

	// 2. 加载历史消息（升序前 N 条）
	history, err := s.messageRepo.FindByConversation(ctx, conversation.ID, userID, s.historyLimit)
	if err != nil {
		return 0, "", fmt.Errorf("failed to load conversation history: %w", err)
	}

	// 3. 持久化用户消息。必须先于模型调用落库，
	// 这样即使代理调用失败，重试看到的历史也是一致的。
	userMessage := &model.Message{
		UserID:         userID,
		ConversationID: conversation.ID,
		Role:           model.MessageRoleUser,
		Content:        content,
	}
	if err := s.messageRepo.Create(ctx, userMessage); err != nil {
		return 0, "", fmt.Errorf("failed to save user message: %w", err)
	}

	// 4. 构建模型对话记录：system 提示钉住当前身份，之后是历史和新消息
	messages := s.composeTranscript(userID, history, content)

	// 5. 执行代理。这里的失败对本轮对话是致命的，但用户消息保持已落库状态。
	reply, err := s.agentRunner.Run(ctx, userID, messages)
	if err != nil {
		return 0, "", fmt.Errorf("agent execution failed: %w", err)
	}

	// 6. 持久化助手消息
	assistantMessage := &model.Message{
		UserID:         userID,
		ConversationID: conversation.ID,
		Role:           model.MessageRoleAssistant,
		Content:        reply,
	}
	if err := s.messageRepo.Create(ctx, assistantMessage); err != nil {
		return 0, "", fmt.Errorf("failed to save assistant message: %w", err)
	}

	// 7. 推进会话的最近活跃时间戳。失败只记录日志，本轮对话已经完成。
	if err := s.conversationRepo.Touch(ctx, conversation.ID, userID); err != nil {
		log.Errorf("推进会话时间戳失败: conversationId=%d, err=%v", conversation.ID, err)
	}

	return conversation.ID, reply, nil
}

// resolveConversation 按所有者范围获取已有会话，或创建新会话。
// 给定的会话不存在或不属于当前用户时，统一返回 ErrConversationNotFound。
func (s *chatService) resolveConversation(ctx context.Context, userID string, conversationID *uint) (*model.Conversation, error) {
	if conversationID != nil {
		conversation, err := s.conversationRepo.FindByIDAndUser(ctx, *conversationID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrConversationNotFound
			}
			return nil, err
		}
		return conversation, nil
	}

	conversation := &model.Conversation{UserID: userID}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, nil
}

// composeTranscript 将历史消息映射为模型对话记录。
func (s *chatService) composeTranscript(userID string, history []model.Message, content string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf("The current user_id is '%s'. Always use this user_id for task operations. Be concise and friendly.", userID),
	})
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	return messages
}
