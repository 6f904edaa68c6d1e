// Package llm 封装了与大语言模型交互的客户端。
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"taskpilot-go/internal/config"
)

// Client 定义了 LLM 客户端的接口。
// tools 不为空时允许模型请求工具调用，返回的消息中可能携带 ToolCalls。
type Client interface {
	ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error)
}

type openaiClient struct {
	cfg    config.OpenAIConfig
	client *openai.Client
}

// NewClient 根据配置创建一个新的 LLM 客户端。
// 通过 base_url 可以接入任何兼容 OpenAI 协议的服务。
func NewClient(cfg config.OpenAIConfig) Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &openaiClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// ChatCompletion 发起一次非流式的聊天补全调用并返回首个候选消息。
// 网络或服务端错误原样向上传播，由调用方决定失败语义。
func (c *openaiClient) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool) (openai.ChatCompletionMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
	}
	if len(tools) > 0 {
		req.Tools = tools
	}
	if c.cfg.MaxTokens > 0 {
		req.MaxTokens = c.cfg.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("failed to call chat api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("chat api returned no choices")
	}
	return resp.Choices[0].Message, nil
}
