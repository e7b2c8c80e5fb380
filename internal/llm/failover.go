package llm

import (
	"context"
	stdErrors "errors"
	"log/slog"

	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/pkg/logger"
)

// Failover 按顺序尝试多个推理服务，首个成功的结果即为最终结果。
type Failover struct {
	clients []Client
	names   []string
	logger  *slog.Logger
}

// NewFailover 构造降级链。names 与 clients 一一对应，仅用于日志。
func NewFailover(clients []Client, names []string) *Failover {
	if len(names) != len(clients) {
		names = make([]string, len(clients))
	}
	return &Failover{clients: clients, names: names, logger: logger.Named("llm")}
}

// Complete 实现 Client 接口。
func (f *Failover) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if f == nil || len(f.clients) == 0 {
		return "", xerrors.New(xerrors.CodeInitializationFailure, "未配置任何推理服务")
	}
	var errs []error
	for i, client := range f.clients {
		if client == nil {
			continue
		}
		reply, err := client.Complete(ctx, messages, opts)
		if err == nil {
			return reply, nil
		}
		errs = append(errs, err)
		if f.logger != nil {
			f.logger.Warn("推理服务调用失败，尝试降级",
				slog.String("provider", f.names[i]),
				slog.Any("error", err),
			)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return "", xerrors.Wrap(xerrors.CodeProviderFailure, stdErrors.Join(errs...), "所有推理服务均不可用")
}

var _ Client = (*Failover)(nil)
