package job

import (
	"context"

	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/internal/orchestrator"
)

// Store 抽象了任务状态的持久化接口。Claim 在领取时递增 Attempts，
// 对已完成或重试耗尽的任务分别返回 ErrJobCompleted 与 ErrJobExhausted。
type Store interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Claim(ctx context.Context, id string) (*Job, error)
	MarkSucceeded(ctx context.Context, id string, result *orchestrator.Response) error
	MarkFailed(ctx context.Context, id string, code xerrors.Code, lastError string, terminal bool) error
	Close() error
}
