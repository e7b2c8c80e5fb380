package api

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"time"

	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/internal/job"
	"AgentFlow-Chain/internal/observability/metrics"
	"AgentFlow-Chain/internal/orchestrator"
	"AgentFlow-Chain/internal/tool"
	"AgentFlow-Chain/internal/web3"
)

// ChatExecutor 定义同步对话接口所需的编排能力。
type ChatExecutor interface {
	Handle(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error)
}

// JobService 定义异步任务接口所需的能力。
type JobService interface {
	Submit(ctx context.Context, req job.SubmitRequest) (*job.Job, error)
	Get(ctx context.Context, id string) (*job.Job, error)
}

// ChainReporter 提供健康检查时的链上状态快照。
type ChainReporter interface {
	FetchChainSnapshot(ctx context.Context) (web3.ChainSnapshot, error)
}

// Server 负责暴露 REST 接口，供外部驱动编排引擎执行。
type Server struct {
	addr     string
	chat     ChatExecutor
	jobs     JobService
	registry *tool.Registry
	chain    ChainReporter
}

// ServerOption 定义可选配置。
type ServerOption func(*Server)

// WithJobService 启用异步任务接口。
func WithJobService(jobs JobService) ServerOption {
	return func(s *Server) {
		s.jobs = jobs
	}
}

// WithChainReporter 在健康检查中附带链上快照。
func WithChainReporter(chain ChainReporter) ServerOption {
	return func(s *Server) {
		s.chain = chain
	}
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, chat ChatExecutor, registry *tool.Registry, opts ...ServerOption) *Server {
	s := &Server{addr: addr, chat: chat, registry: registry}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler 返回完整的路由，便于测试时直接挂接 httptest。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/chat", s.instrument("chat", http.HandlerFunc(s.handleChat)))
	mux.Handle("/api/v1/jobs", s.instrument("jobs", http.HandlerFunc(s.handleJobs)))
	mux.Handle("/api/v1/tools", s.instrument("tools", http.HandlerFunc(s.handleTools)))
	mux.Handle("/healthz", s.instrument("healthz", http.HandlerFunc(s.handleHealth)))
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, s.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// handleChat 处理同步对话请求。
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, xerrors.CodeInvalidArgument, "仅支持 POST")
		return
	}
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, xerrors.CodeInitializationFailure, "编排引擎未初始化")
		return
	}

	var req orchestrator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, xerrors.CodeInvalidArgument, "请求体解析失败")
		return
	}

	resp, err := s.chat.Handle(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleJobs 处理异步任务的提交与查询。
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, xerrors.CodeInitializationFailure, "任务服务未启用")
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req job.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, xerrors.CodeInvalidArgument, "请求体解析失败")
			return
		}
		j, err := s.jobs.Submit(r.Context(), req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, j)
	case http.MethodGet:
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, xerrors.CodeInvalidArgument, "缺少 id 参数")
			return
		}
		j, err := s.jobs.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, j)
	default:
		writeError(w, http.StatusMethodNotAllowed, xerrors.CodeInvalidArgument, "仅支持 GET/POST")
	}
}

// handleTools 返回当前注册的工具清单。
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, xerrors.CodeInvalidArgument, "仅支持 GET")
		return
	}
	if s.registry == nil {
		writeError(w, http.StatusServiceUnavailable, xerrors.CodeInitializationFailure, "工具注册表未初始化")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Descriptors()})
}

// handleHealth 返回服务健康状态，配置了链上报告器时附带链快照。
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{"status": "ok"}
	if s.chain != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		snapshot, err := s.chain.FetchChainSnapshot(ctx)
		if err != nil {
			payload["chain_error"] = err.Error()
		} else {
			payload["chain"] = snapshot
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

// instrument 把请求耗时与状态码汇入指标收集器。
func (s *Server) instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.ObserveHTTPRequest(name, r.Method, recorder.status, time.Since(start))
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code xerrors.Code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: string(code), Message: message}})
}

// writeDomainError 把领域错误映射为对应的 HTTP 状态码。
func writeDomainError(w http.ResponseWriter, err error) {
	code := xerrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch {
	case stdErrors.Is(err, job.ErrJobNotFound):
		status = http.StatusNotFound
	case code == xerrors.CodeInvalidArgument || code == job.CodeJobValidation:
		status = http.StatusBadRequest
	case code == xerrors.CodeNotFound:
		status = http.StatusNotFound
	case code == xerrors.CodeConflict:
		status = http.StatusConflict
	case code == xerrors.CodeInitializationFailure:
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, code, err.Error())
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, xerrors.CodeInitializationFailure, "服务已关闭")
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
