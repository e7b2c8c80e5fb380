package convo

import "context"

// Store 抽象了会话日志的持久化接口。日志只追加，按写入顺序可查。
type Store interface {
	Append(ctx context.Context, conversationID string, msg Message) error
	// History 返回会话中最近的 limit 条消息，按时间先后排列。
	// limit <= 0 表示全部。
	History(ctx context.Context, conversationID string, limit int) ([]Message, error)
	Close() error
}
