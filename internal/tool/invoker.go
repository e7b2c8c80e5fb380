package tool

import (
	"context"
	stdErrors "errors"

	xerrors "AgentFlow-Chain/internal/errors"
)

// Invoker 抽象了工具的执行入口。实现对不支持的工具返回 ErrUnsupported，
// 以便组合调用方降级到下一个实现。
type Invoker interface {
	Invoke(ctx context.Context, name string, params map[string]any) (any, error)
}

// Chain 依次尝试多个执行器。前一个返回 ErrUnsupported 时落到下一个，
// 其余错误立即返回。
type Chain []Invoker

// Invoke 实现 Invoker 接口。
func (c Chain) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	if len(c) == 0 {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "未配置任何工具执行器")
	}
	for _, invoker := range c {
		if invoker == nil {
			continue
		}
		result, err := invoker.Invoke(ctx, name, params)
		if err == nil {
			return result, nil
		}
		if stdErrors.Is(err, ErrUnsupported) {
			continue
		}
		return nil, err
	}
	return nil, ErrUnsupported
}

var _ Invoker = (Chain)(nil)
