package service

import (
	"context"

	"taskpilot-go/internal/model"
	"taskpilot-go/internal/repository"
)

// ConversationService 定义了会话管理的接口。
type ConversationService interface {
	// ListConversations 返回用户的全部会话，按最近活跃时间倒序排列。
	ListConversations(ctx context.Context, userID string) ([]model.Conversation, error)
}

type conversationService struct {
	conversationRepo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(conversationRepo repository.ConversationRepository) ConversationService {
	return &conversationService{conversationRepo: conversationRepo}
}

// ListConversations 检索用户的会话列表。
func (s *conversationService) ListConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	conversations, err := s.conversationRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conversations == nil {
		conversations = []model.Conversation{}
	}
	return conversations, nil
}
