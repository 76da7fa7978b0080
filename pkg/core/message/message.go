// Package message 定义提交给生成服务的消息和用量统计
package message

import "errors"

// ErrInvalidRole 消息角色不是 system、user 或 assistant
var ErrInvalidRole = errors.New("invalid message role")

// Role 表示消息的角色类型
type Role string

const (
	// RoleSystem 系统消息
	RoleSystem Role = "system"
	// RoleUser 用户消息
	RoleUser Role = "user"
	// RoleAssistant AI 助手消息
	RoleAssistant Role = "assistant"
)

// IsValid 检查 Role 是否为有效值
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message 表示提交给生成服务的一条消息
type Message struct {
	// Role 消息角色
	Role Role `json:"role"`
	// Content 消息内容
	Content string `json:"content"`
}

// NewMessage 创建新消息
func NewMessage(role Role, content string) Message {
	return Message{
		Role:    role,
		Content: content,
	}
}

// NewSystemMessage 创建系统消息
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage 创建用户消息
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage 创建助手消息
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// Validate 验证消息是否有效
//
// 内容允许为空：压缩可能删除一条消息的全部可丢弃片段。
func (m *Message) Validate() error {
	if !m.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}

// TokenUsage 服务端报告的 Token 用量
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add 累加另一次调用的用量
func (t *TokenUsage) Add(other TokenUsage) {
	t.PromptTokens += other.PromptTokens
	t.CompletionTokens += other.CompletionTokens
	t.TotalTokens += other.TotalTokens
}
