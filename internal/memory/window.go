// Package memory 负责把完整会话历史裁剪为受 token 预算约束的上下文窗口。
package memory

import (
	"unicode/utf8"

	"AgentFlow-Chain/internal/convo"
)

const (
	// messageOverhead 是每条消息除正文外的固定封装成本估算。
	messageOverhead = 4
	// charsPerToken 是长度法估算的字符数与 token 的近似比例。
	charsPerToken = 4

	defaultBudget = 2000
)

// Window 是一次请求实际送入模型的有界历史切片，按时间先后排列。
type Window struct {
	Messages    []convo.Message
	TotalTokens int
}

// Builder 构建上下文窗口。纯函数式：相同输入总是产出相同窗口。
type Builder struct {
	budget int
}

// NewBuilder 创建窗口构建器。budget <= 0 时使用默认预算。
func NewBuilder(budget int) *Builder {
	if budget <= 0 {
		budget = defaultBudget
	}
	return &Builder{budget: budget}
}

// Budget 返回生效的 token 预算。
func (b *Builder) Budget() int {
	return b.budget
}

// EstimateTokens 用长度法估算一段文本的 token 成本，至少为 1。
func EstimateTokens(content string) int {
	n := utf8.RuneCountInString(content)
	cost := (n + charsPerToken - 1) / charsPerToken
	if cost < 1 {
		cost = 1
	}
	return cost
}

// MessageCost 返回一条消息计入预算的成本。优先使用写入时固定的
// TokenCost，否则按正文长度估算，再叠加固定封装成本。
func MessageCost(msg convo.Message) int {
	cost := msg.TokenCost
	if cost <= 0 {
		cost = EstimateTokens(msg.Content)
	}
	return cost + messageOverhead
}

// Build 组装窗口。systemPrompt 为空时不占位。history 的最后一条视为
// 最新消息，无论成本如何始终入窗：最新消息自身超出预算时接受超支，
// 而不是截断或失败。其余历史从新到旧累加，放不下整条就停止，不做
// 部分截断。结果按时间先后重组：系统提示、较早历史、最新消息。
func (b *Builder) Build(systemPrompt string, history []convo.Message) Window {
	var window Window

	var system *convo.Message
	if systemPrompt != "" {
		system = &convo.Message{Role: convo.RoleSystem, Content: systemPrompt}
		window.TotalTokens += MessageCost(*system)
	}

	if len(history) == 0 {
		if system != nil {
			window.Messages = []convo.Message{*system}
		}
		return window
	}

	newest := history[len(history)-1]
	older := history[:len(history)-1]
	window.TotalTokens += MessageCost(newest)

	included := make([]convo.Message, 0, len(older))
	for i := len(older) - 1; i >= 0; i-- {
		cost := MessageCost(older[i])
		if window.TotalTokens+cost > b.budget {
			break
		}
		window.TotalTokens += cost
		included = append(included, older[i])
	}

	messages := make([]convo.Message, 0, len(included)+2)
	if system != nil {
		messages = append(messages, *system)
	}
	for i := len(included) - 1; i >= 0; i-- {
		messages = append(messages, included[i])
	}
	messages = append(messages, newest)
	window.Messages = messages
	return window
}
