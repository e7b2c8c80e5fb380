package job

import (
	"context"
	"sync"
	"time"

	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/internal/orchestrator"
)

// MemoryStore 把任务状态保存在进程内，主要用于测试与单机部署。
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore 创建内存任务存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

var _ Store = (*MemoryStore)(nil)

// Create 记录一个新任务。ID 冲突返回 ErrJobConflict。
func (s *MemoryStore) Create(ctx context.Context, j *Job) error {
	if j == nil || j.ID == "" {
		return xerrors.New(CodeJobValidation, "任务 ID 不能为空")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[j.ID]; exists {
		return ErrJobConflict
	}
	now := time.Now().Unix()
	stored := cloneJob(j)
	if stored.Status == "" {
		stored.Status = StatusPending
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.jobs[j.ID] = stored
	return nil
}

// Get 返回任务快照。
func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return cloneJob(stored), nil
}

// Claim 领取任务并递增尝试次数。
func (s *MemoryStore) Claim(ctx context.Context, id string) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	switch stored.Status {
	case StatusSucceeded:
		return nil, ErrJobCompleted
	case StatusRunning:
		return nil, ErrJobConflict
	}
	if stored.Attempts >= stored.MaxRetries {
		return nil, ErrJobExhausted
	}
	stored.Status = StatusRunning
	stored.Attempts++
	stored.UpdatedAt = time.Now().Unix()
	return cloneJob(stored), nil
}

// MarkSucceeded 记录执行结果并把任务置为成功。
func (s *MemoryStore) MarkSucceeded(ctx context.Context, id string, result *orchestrator.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	stored.Status = StatusSucceeded
	stored.Result = result
	stored.LastError = ""
	stored.ErrorCode = ""
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// MarkFailed 记录失败信息。terminal 为真时任务不再回到待执行状态。
func (s *MemoryStore) MarkFailed(ctx context.Context, id string, code xerrors.Code, lastError string, terminal bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if terminal {
		stored.Status = StatusFailed
	} else {
		stored.Status = StatusPending
	}
	stored.LastError = lastError
	stored.ErrorCode = string(code)
	stored.UpdatedAt = time.Now().Unix()
	return nil
}

// Close 实现 Store 接口，无需释放资源。
func (s *MemoryStore) Close() error {
	return nil
}

func cloneJob(j *Job) *Job {
	if j == nil {
		return nil
	}
	cloned := *j
	cloned.Metadata = cloneMetadata(j.Metadata)
	return &cloned
}
