package planner

import (
	"context"
	"log/slog"

	"AgentFlow-Chain/internal/classifier"
	"AgentFlow-Chain/internal/convo"
	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/internal/llm"
	"AgentFlow-Chain/internal/tool"
	"AgentFlow-Chain/pkg/logger"
)

// historyTurns 是提示词中携带的最近会话轮数上限。
const historyTurns = 5

// Synthesizer 调用推理服务合成执行计划。
type Synthesizer struct {
	provider    llm.Client
	registry    *tool.Registry
	classifier  *classifier.Classifier
	temperature float64
	logger      *slog.Logger
}

// SynthesizerOption 定义可选配置。
type SynthesizerOption func(*Synthesizer)

// WithClassifier 配置离题预过滤器。
func WithClassifier(c *classifier.Classifier) SynthesizerOption {
	return func(s *Synthesizer) {
		s.classifier = c
	}
}

// WithTemperature 覆盖默认采样温度。
func WithTemperature(t float64) SynthesizerOption {
	return func(s *Synthesizer) {
		if t > 0 {
			s.temperature = t
		}
	}
}

// WithLogger 指定日志输出。
func WithLogger(log *slog.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		s.logger = log
	}
}

// NewSynthesizer 构造计划合成器。
func NewSynthesizer(provider llm.Client, registry *tool.Registry, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		provider:    provider,
		registry:    registry,
		temperature: 0.3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = logger.Named("planner")
	}
	return s
}

// Synthesize 为一条用户消息合成计划。分类器命中时直接短路返回离题
// 计划，不触发任何模型调用。其余任何失败都折叠为 ErrSynthesis。
func (s *Synthesizer) Synthesize(ctx context.Context, userMessage string, window []convo.Message) (*Plan, error) {
	if s.provider == nil || s.registry == nil {
		return nil, xerrors.Wrap(CodeSynthesisFailure, ErrSynthesis, "合成器未初始化")
	}

	if s.classifier != nil && s.classifier.IsOffTopic(userMessage) {
		return OffTopicPlan(""), nil
	}

	recent := window
	if len(recent) > historyTurns {
		recent = recent[len(recent)-historyTurns:]
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: RenderPrompt(s.registry, recent, userMessage)},
	}

	reply, err := s.provider.Complete(ctx, messages, llm.Options{
		Temperature:  s.temperature,
		ResponseJSON: true,
	})
	if err != nil {
		s.logger.Warn("推理调用失败，转入降级规划", slog.Any("error", err))
		return nil, xerrors.Wrap(CodeSynthesisFailure, err, "调用推理服务失败")
	}

	result := ExtractPlan(reply)
	if !result.Ok() {
		s.logger.Warn("计划提取失败，转入降级规划", slog.String("reason", result.Err))
		return nil, xerrors.New(CodeSynthesisFailure, "提取计划失败: "+result.Err)
	}

	plan := result.Plan
	Normalize(plan, s.registry, s.logger)
	return plan, nil
}

// IsSynthesisFailure 判断错误是否为合成失败信号。
func IsSynthesisFailure(err error) bool {
	return xerrors.CodeOf(err) == CodeSynthesisFailure
}
