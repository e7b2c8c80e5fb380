package llm

import "context"

// 会话消息角色。
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 是发送给大模型的一条会话消息。
type Message struct {
	Role    string
	Content string
}

// Options 控制单次推理调用的采样行为。
type Options struct {
	// Temperature 为 0 时由各实现自行决定默认值。
	Temperature float64
	MaxTokens   int
	// ResponseJSON 要求模型将整个回复约束为一个 JSON 对象。
	ResponseJSON bool
}

// Client 定义了调用大模型的统一接口。
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}
