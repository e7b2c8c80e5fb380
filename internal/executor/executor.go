// Package executor 驱动执行图：顺序计划严格串行并在步骤间传递结果，
// 并行计划并发执行且失败互不影响。
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"AgentFlow-Chain/internal/graph"
	"AgentFlow-Chain/internal/planner"
	"AgentFlow-Chain/internal/tool"
	"AgentFlow-Chain/pkg/logger"
)

// Outcome 是一步执行的结果，与输入步骤按下标对齐。
type Outcome struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Aggregator 聚合各步骤的执行结果。不做重试：重试策略属于工具执行
// 器自身，协作方超时与其他失败同等对待。
type Aggregator struct {
	invoker tool.Invoker
	logger  *slog.Logger
}

// AggregatorOption 定义可选配置。
type AggregatorOption func(*Aggregator)

// WithLogger 指定日志输出。
func WithLogger(log *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = log
	}
}

// NewAggregator 构造聚合器。
func NewAggregator(invoker tool.Invoker, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{invoker: invoker}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.logger == nil {
		a.logger = logger.Named("executor")
	}
	return a
}

// Run 执行全部步骤并返回按下标对齐的结果。
func (a *Aggregator) Run(ctx context.Context, executionType planner.ExecutionType, steps []graph.Step) []Outcome {
	if len(steps) == 0 {
		return []Outcome{}
	}
	if executionType == planner.ExecutionSequential {
		return a.runSequential(ctx, steps)
	}
	return a.runParallel(ctx, steps)
}

// runSequential 严格按顺序执行：第 i+1 步在第 i 步落定前不会开始。
// 某步失败后，其后全部步骤标记为 skipped，不再尝试。
func (a *Aggregator) runSequential(ctx context.Context, steps []graph.Step) []Outcome {
	outcomes := make([]Outcome, len(steps))
	resolved := make(map[string]any, len(steps))
	failed := false

	for i, step := range steps {
		if failed {
			outcomes[i] = Outcome{Tool: step.Tool, Skipped: true}
			continue
		}

		params, err := resolveParameters(step.Parameters, resolved)
		if err != nil {
			outcomes[i] = Outcome{Tool: step.Tool, Error: err.Error()}
			a.logger.Warn("步骤参数解析失败", slog.String("tool", step.Tool), slog.Any("error", err))
			failed = true
			continue
		}

		result, invokeErr := a.invoker.Invoke(ctx, step.Tool, params)
		if invokeErr != nil {
			outcomes[i] = Outcome{Tool: step.Tool, Error: invokeErr.Error()}
			a.logger.Warn("步骤执行失败，后续步骤跳过",
				slog.String("tool", step.Tool),
				slog.Any("error", invokeErr),
			)
			failed = true
			continue
		}
		outcomes[i] = Outcome{Tool: step.Tool, Success: true, Result: result}
		resolved[step.Tool] = result
	}
	return outcomes
}

// runParallel 并发执行全部步骤，单步失败不影响兄弟步骤。
func (a *Aggregator) runParallel(ctx context.Context, steps []graph.Step) []Outcome {
	outcomes := make([]Outcome, len(steps))
	var wg sync.WaitGroup
	for i, step := range steps {
		wg.Add(1)
		go func(idx int, step graph.Step) {
			defer wg.Done()
			params, err := resolveParameters(step.Parameters, nil)
			if err != nil {
				outcomes[idx] = Outcome{Tool: step.Tool, Error: err.Error()}
				return
			}
			result, invokeErr := a.invoker.Invoke(ctx, step.Tool, params)
			if invokeErr != nil {
				outcomes[idx] = Outcome{Tool: step.Tool, Error: invokeErr.Error()}
				return
			}
			outcomes[idx] = Outcome{Tool: step.Tool, Success: true, Result: result}
		}(i, step)
	}
	wg.Wait()
	return outcomes
}

// resolveParameters 把参数中的 Ref 占位符替换为前序步骤的实际结果。
// 占位符无法解析时整步失败，由调用方按失败流程处理。
func resolveParameters(params map[string]any, resolved map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for key, value := range params {
		ref, ok := value.(planner.Ref)
		if !ok {
			out[key] = value
			continue
		}
		source, found := resolved[ref.Tool]
		if !found {
			return nil, fmt.Errorf("参数 %s 引用了未完成的工具 %s 的结果", key, ref.Tool)
		}
		if ref.Field == "" {
			out[key] = source
			continue
		}
		fields, ok := source.(map[string]any)
		if !ok {
			// 标量结果不可取字段，整体替换。
			out[key] = source
			continue
		}
		fieldValue, ok := fields[ref.Field]
		if !ok {
			return nil, fmt.Errorf("工具 %s 的结果中不存在字段 %s", ref.Tool, ref.Field)
		}
		out[key] = fieldValue
	}
	return out, nil
}
