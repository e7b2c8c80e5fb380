// Package convo 维护按会话追加的消息日志，是编排引擎的记忆来源。
package convo

import (
	xerrors "AgentFlow-Chain/internal/errors"
)

// Role 表示消息的发言方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message 是会话日志中的一条消息。TokenCost 在写入时估算并固定，
// 供上下文窗口构建直接累加。
type Message struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	TokenCost int    `json:"token_cost"`
	CreatedAt int64  `json:"created_at"`
}

const (
	CodeConversationStorage xerrors.Code = "CONVERSATION_STORAGE_FAILURE"
)

func init() {
	xerrors.Register(CodeConversationStorage, xerrors.Attributes{
		Message:   "conversation storage failure",
		Severity:  xerrors.SeverityCritical,
		Retryable: true,
		Alert:     true,
	})
}

// IsValidRole 检查角色是否为支持的枚举值。
func IsValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}
