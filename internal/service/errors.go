// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"
	"fmt"
)

// 业务层哨兵错误。handler 据此映射 HTTP 状态码。
// "不存在"与"不属于当前用户"统一为 not found，避免跨租户的存在性泄露。
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailExists          = errors.New("email already registered")
)

// ValidationError 表示字段级的输入校验失败。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field '%s': %s", e.Field, e.Message)
}
