package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"AgentFlow-Chain/internal/classifier"
	"AgentFlow-Chain/internal/convo"
	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/internal/executor"
	"AgentFlow-Chain/internal/graph"
	"AgentFlow-Chain/internal/llm"
	"AgentFlow-Chain/internal/memory"
	"AgentFlow-Chain/internal/planner"
	"AgentFlow-Chain/internal/tool"
	"AgentFlow-Chain/pkg/logger"
)

// Request 描述一次编排请求。
type Request struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ToolCall 是面向执行方的步骤展开形式。
type ToolCall struct {
	Tool       string         `json:"tool"`
	NextTool   string         `json:"next_tool,omitempty"`
	Parameters map[string]any `json:"parameters"`
	Reason     string         `json:"reason,omitempty"`
}

// Response 汇总一次请求的计划与执行结果。
type Response struct {
	Analysis      string                `json:"analysis"`
	IsOffTopic    bool                  `json:"is_off_topic"`
	RequiresTools bool                  `json:"requires_tools"`
	ExecutionType planner.ExecutionType `json:"execution_type"`
	Steps         []planner.Step        `json:"steps"`
	MissingInfo   []string              `json:"missing_info"`
	Complexity    planner.Complexity    `json:"complexity"`
	ToolCalls     []ToolCall            `json:"tool_calls"`
	Results       []executor.Outcome    `json:"results,omitempty"`
}

// Engine 协调从自然语言到工具调用的完整管线，是系统的业务核心。
// 所有协作方显式注入，不依赖任何全局句柄。
type Engine struct {
	provider   llm.Client
	registry   *tool.Registry
	invoker    tool.Invoker
	store      convo.Store
	classifier *classifier.Classifier
	window     *memory.Builder
	synth      *planner.Synthesizer
	logger     *slog.Logger

	historyDepth int
	temperature  float64
}

// Option 定义可选的 Engine 配置。
type Option func(*Engine)

// defaultHistoryDepth 是从会话日志加载历史的默认条数。
const defaultHistoryDepth = 20

// WithInvoker 配置工具执行器。缺省时只产出计划，不执行任何步骤。
func WithInvoker(invoker tool.Invoker) Option {
	return func(e *Engine) {
		e.invoker = invoker
	}
}

// WithConversationStore 配置会话日志。
func WithConversationStore(store convo.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithClassifier 覆盖默认的离题过滤器。
func WithClassifier(c *classifier.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithTokenBudget 设置上下文窗口的 token 预算。
func WithTokenBudget(budget int) Option {
	return func(e *Engine) {
		e.window = memory.NewBuilder(budget)
	}
}

// WithHistoryDepth 设置从会话日志加载的历史条数。
func WithHistoryDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.historyDepth = depth
		}
	}
}

// WithTemperature 设置计划合成的采样温度。
func WithTemperature(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.temperature = t
		}
	}
}

// WithLogger 指定日志输出。
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = log
	}
}

// New 创建编排引擎。
func New(provider llm.Client, registry *tool.Registry, opts ...Option) *Engine {
	e := &Engine{
		provider:     provider,
		registry:     registry,
		historyDepth: defaultHistoryDepth,
		temperature:  0.3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.classifier == nil {
		e.classifier = classifier.NewDefault()
	}
	if e.window == nil {
		e.window = memory.NewBuilder(0)
	}
	if e.logger == nil {
		e.logger = logger.Named("orchestrator")
	}
	e.synth = planner.NewSynthesizer(provider, registry,
		planner.WithClassifier(e.classifier),
		planner.WithTemperature(e.temperature),
		planner.WithLogger(e.logger),
	)
	return e
}

// Handle 处理一次请求：分类 → 窗口 → 合成（失败降级）→ 建图 → 聚合。
// 除入参校验外没有错误穿出公共边界：合成失败落到降级规划，存储失败
// 只记日志，步骤失败体现在各自的 Outcome 里。
func (e *Engine) Handle(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "消息不能为空")
	}
	if e.provider == nil || e.registry == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "编排引擎未初始化")
	}

	history := e.loadHistory(ctx, req.ConversationID)
	history = append(history, convo.Message{
		Role:      convo.RoleUser,
		Content:   message,
		TokenCost: memory.EstimateTokens(message),
	})
	window := e.window.Build("", history)

	plan, err := e.synth.Synthesize(ctx, message, window.Messages)
	if err != nil {
		if !planner.IsSynthesisFailure(err) {
			e.logger.Error("计划合成返回未知错误，仍转入降级规划", slog.Any("error", err))
		}
		// 降级计划按原样返回，保证对同一消息比特级一致。
		plan = planner.Fallback(message)
	}

	steps := graph.Build(plan)
	response := &Response{
		Analysis:      plan.Analysis,
		IsOffTopic:    plan.IsOffTopic,
		RequiresTools: plan.RequiresTools,
		ExecutionType: plan.ExecutionType,
		Steps:         plan.Steps,
		MissingInfo:   plan.MissingInfo,
		Complexity:    plan.Complexity,
		ToolCalls:     expandToolCalls(steps),
	}

	if plan.RequiresTools && e.invoker != nil {
		agg := executor.NewAggregator(e.invoker, executor.WithLogger(e.logger))
		response.Results = agg.Run(ctx, plan.ExecutionType, steps)
	}

	e.appendExchange(ctx, req.ConversationID, message, response)
	return response, nil
}

// loadHistory 读取最近的会话历史。存储故障降级为空历史。
func (e *Engine) loadHistory(ctx context.Context, conversationID string) []convo.Message {
	if e.store == nil || conversationID == "" {
		return nil
	}
	history, err := e.store.History(ctx, conversationID, e.historyDepth)
	if err != nil {
		e.logger.Warn("加载会话历史失败",
			slog.Any("error", err),
			slog.String("conversation_id", conversationID),
		)
		return nil
	}
	return history
}

// appendExchange 把本轮的用户消息与助手分析写回会话日志。
func (e *Engine) appendExchange(ctx context.Context, conversationID, message string, resp *Response) {
	if e.store == nil || conversationID == "" {
		return
	}
	now := time.Now().Unix()
	entries := []convo.Message{
		{Role: convo.RoleUser, Content: message, TokenCost: memory.EstimateTokens(message), CreatedAt: now},
		{Role: convo.RoleAssistant, Content: resp.Analysis, TokenCost: memory.EstimateTokens(resp.Analysis), CreatedAt: now},
	}
	for _, entry := range entries {
		if err := e.store.Append(ctx, conversationID, entry); err != nil {
			e.logger.Warn("写入会话日志失败",
				slog.Any("error", err),
				slog.String("conversation_id", conversationID),
			)
			return
		}
	}
}

func expandToolCalls(steps []graph.Step) []ToolCall {
	calls := make([]ToolCall, 0, len(steps))
	for _, step := range steps {
		calls = append(calls, ToolCall{
			Tool:       step.Tool,
			NextTool:   step.Successor,
			Parameters: step.Parameters,
			Reason:     step.Reason,
		})
	}
	return calls
}
