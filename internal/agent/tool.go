// Package agent 实现了基于工具调用的对话代理：
// 工具目录（Registry）声明了模型可以请求的任务操作，
// 执行器（Executor）驱动模型调用、分发工具并合成最终回复。
package agent

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Tool 是模型可请求的一个具名操作。
// Call 的 userID 永远是已认证的调用者身份，由执行器注入，
// 模型提供的任何身份参数都会被丢弃。
type Tool interface {
	// Name 返回工具在目录中的唯一名称。
	Name() string
	// Definition 返回提供给模型的工具 schema。
	Definition() openai.Tool
	// Call 以原始 JSON 参数执行工具，返回展示给模型的文本结果。
	// 业务性的失败（如任务不存在）编码在返回文本中而非 error 中。
	Call(ctx context.Context, userID string, rawArgs []byte) (string, error)
}

// Registry 是按名称索引的工具目录，在构造时装配并注入，
// 不存在任何包级的可变状态。
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry 创建一个包含所有任务操作工具的目录。
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.order = append(r.order, t.Name())
		r.tools[t.Name()] = t
	}
	return r
}

// Lookup 按名称查找工具。未注册的名称返回 false。
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions 按注册顺序返回全部工具 schema。
func (r *Registry) Definitions() []openai.Tool {
	defs := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}
