package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"taskpilot-go/pkg/llm"
	"taskpilot-go/pkg/log"
)

// Executor 驱动一轮代理对话：最多一次工具调用回合，然后合成最终回复。
// llmClient 和 registry 在构造时注入，没有共享的全局实例。
type Executor struct {
	llmClient llm.Client
	registry  *Registry
}

// NewExecutor 创建一个新的 Executor 实例。
func NewExecutor(llmClient llm.Client, registry *Registry) *Executor {
	return &Executor{
		llmClient: llmClient,
		registry:  registry,
	}
}

// Run 根据给定的对话记录产生一条助手回复。
//
// 第一次模型调用携带完整的工具目录。模型没有请求工具时，
// 其文本内容即为最终回复，不再发起第二次调用（内容可能为空，原样返回）。
// 模型请求了工具时，按原始顺序逐个分发，把每个结果作为 tool 消息
// 追加到对话记录，再发起一次不带工具目录的调用以获得自然语言合成。
//
// 工具执行的任何失败都被转换成对模型可见的文本结果，绝不向调用方抛出；
// 两次模型调用本身的失败则原样向上传播，对本轮对话是致命的。
func (e *Executor) Run(ctx context.Context, userID string, messages []openai.ChatCompletionMessage) (string, error) {
	first, err := e.llmClient.ChatCompletion(ctx, messages, e.registry.Definitions())
	if err != nil {
		return "", err
	}

	if len(first.ToolCalls) == 0 {
		return first.Content, nil
	}

	// 携带工具调用的助手消息必须先进入对话记录，
	// 之后的 tool 消息才能通过 ToolCallID 与之配对。
	messages = append(messages, first)

	for _, call := range first.ToolCalls {
		result := e.dispatch(ctx, userID, call)
		messages = append(messages, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    result,
			Name:       call.Function.Name,
			ToolCallID: call.ID,
		})
	}

	second, err := e.llmClient.ChatCompletion(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return second.Content, nil
}

// dispatch 执行单个工具调用并返回展示给模型的文本结果。
// 未知工具、参数错误和执行失败都被包含在返回文本中，不会中断整个批次。
func (e *Executor) dispatch(ctx context.Context, userID string, call openai.ToolCall) string {
	name := call.Function.Name

	tool, ok := e.registry.Lookup(name)
	if !ok {
		log.Warnf("模型请求了未知工具: %s", name)
		return fmt.Sprintf("unknown tool: %s", name)
	}

	// 无参数调用时 API 可能给出空字符串或 JSON null，等同于空对象
	rawArgs := call.Function.Arguments
	if strings.TrimSpace(rawArgs) == "" {
		rawArgs = "{}"
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return fmt.Sprintf("Error executing tool: invalid arguments for %s: %v", name, err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	// 安全不变式：无条件用已认证的身份覆盖 user_id，
	// 模型（或注入到对话中的恶意内容）无法借工具访问其他租户的数据。
	args["user_id"] = userID
	pinned, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	result, err := tool.Call(ctx, userID, pinned)
	if err != nil {
		log.Warnf("工具执行失败: tool=%s, userId=%s, err=%v", name, userID, err)
		return fmt.Sprintf("Error executing tool: %v", err)
	}
	return result
}
