package convo

import (
	"context"
	"strings"
	"sync"
	"time"

	xerrors "AgentFlow-Chain/internal/errors"
)

// MemoryStore 以内存方式保存会话日志，主要用于测试和单机部署。
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
}

// NewMemoryStore 创建 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]Message)}
}

// Append 实现 Store 接口。
func (m *MemoryStore) Append(_ context.Context, conversationID string, msg Message) error {
	if strings.TrimSpace(conversationID) == "" {
		return xerrors.New(xerrors.CodeInvalidArgument, "会话 ID 不能为空")
	}
	if !IsValidRole(msg.Role) {
		return xerrors.New(xerrors.CodeInvalidArgument, "非法的消息角色")
	}
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().Unix()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	return nil
}

// History 实现 Store 接口。
func (m *MemoryStore) History(_ context.Context, conversationID string, limit int) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.messages[conversationID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Message, len(all))
	copy(out, all)
	return out, nil
}

// Close 对内存存储无需操作。
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
