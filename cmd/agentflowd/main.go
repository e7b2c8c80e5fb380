package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"AgentFlow-Chain/internal/api"
	"AgentFlow-Chain/internal/config"
	"AgentFlow-Chain/internal/convo"
	"AgentFlow-Chain/internal/job"
	"AgentFlow-Chain/internal/llm"
	"AgentFlow-Chain/internal/llm/openai"
	"AgentFlow-Chain/internal/observability/alerting"
	"AgentFlow-Chain/internal/orchestrator"
	"AgentFlow-Chain/internal/tool"
	"AgentFlow-Chain/internal/web3"
	"AgentFlow-Chain/pkg/logger"
)

// main 是 AgentFlow 守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("agentflowd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("AGENTFLOW_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "agentflow.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer logger.Sync()

	llmClient, err := createLLMClient(cfg)
	if err != nil {
		return err
	}

	registry, err := createRegistry(cfg)
	if err != nil {
		return err
	}

	invokers := make(tool.Chain, 0, 2)
	var chainReporter api.ChainReporter
	if cfg.Web3.RPCURL != "" {
		web3Client, err := web3.Dial(ctx, web3.Config{Name: cfg.Web3.Name, RPCURL: cfg.Web3.RPCURL})
		if err != nil {
			return err
		}
		defer web3Client.Close()
		invokers = append(invokers, web3Client)
		chainReporter = web3Client
	}
	if cfg.Tools.BackendURL != "" {
		remote, err := tool.NewRemoteInvoker(cfg.Tools.BackendURL, registry)
		if err != nil {
			return err
		}
		invokers = append(invokers, remote)
	}

	convoStore, err := createConversationStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if convoStore != nil {
			_ = convoStore.Close()
		}
	}()

	engineOpts := []orchestrator.Option{
		orchestrator.WithTokenBudget(cfg.Orchestrator.TokenBudget),
		orchestrator.WithTemperature(cfg.Orchestrator.Temperature),
		orchestrator.WithHistoryDepth(cfg.Conversation.HistoryDepth),
	}
	if len(invokers) > 0 {
		engineOpts = append(engineOpts, orchestrator.WithInvoker(invokers))
	}
	if convoStore != nil {
		engineOpts = append(engineOpts, orchestrator.WithConversationStore(convoStore))
	}
	engine := orchestrator.New(llmClient, registry, engineOpts...)

	jobStore, err := createJobStore(cfg)
	if err != nil {
		return err
	}
	jobQueue, err := createJobQueue(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if jobQueue != nil {
			if err := jobQueue.Close(); err != nil {
				logger.L().Warn("关闭任务队列失败", slog.Any("error", err))
			}
		}
	}()

	jobService := job.NewService(jobStore, jobQueue, cfg.JobQueue.MaxRetries)
	defer jobService.Close()

	processor := job.NewProcessor(engine, jobStore, jobQueue, jobQueue,
		job.WithWorkerCount(cfg.JobQueue.Worker),
		job.WithProcessorLogger(logger.Named("job")),
		job.WithAlertDispatcher(alerting.NewFanout(&alerting.LogNotifier{})),
	)

	processorCtx, processorCancel := context.WithCancel(ctx)
	defer processorCancel()

	go func() {
		if err := processor.Start(processorCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.L().Error("任务处理器异常退出", slog.Any("error", err))
		}
	}()

	serverOpts := []api.ServerOption{api.WithJobService(jobService)}
	if chainReporter != nil {
		serverOpts = append(serverOpts, api.WithChainReporter(chainReporter))
	}
	server := api.NewServer(cfg.Server.Address, engine, registry, serverOpts...)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// createLLMClient 按配置顺序构建推理客户端，多于一个时启用故障转移。
func createLLMClient(cfg *config.Config) (llm.Client, error) {
	if len(cfg.LLM.Providers) == 0 {
		return nil, errors.New("至少需要配置一个推理服务")
	}
	clients := make([]llm.Client, 0, len(cfg.LLM.Providers))
	names := make([]string, 0, len(cfg.LLM.Providers))
	for _, provider := range cfg.LLM.Providers {
		apiKey := strings.TrimSpace(provider.APIKey)
		if apiKey == "" && provider.APIKeyEnv != "" {
			apiKey = strings.TrimSpace(os.Getenv(provider.APIKeyEnv))
		}
		if apiKey == "" {
			return nil, fmt.Errorf("推理服务 %s 需要配置 api_key 或 api_key_env", provider.Name)
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:  apiKey,
			BaseURL: provider.BaseURL,
			Model:   provider.Model,
			Timeout: provider.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
		names = append(names, provider.Name)
	}
	if len(clients) == 1 {
		return clients[0], nil
	}
	return llm.NewFailover(clients, names), nil
}

// createRegistry 加载内置工具目录，并合并用户自定义的目录文件。
func createRegistry(cfg *config.Config) (*tool.Registry, error) {
	descriptors := tool.DefaultDescriptors()
	if cfg.Tools.CatalogPath != "" {
		extra, err := tool.LoadCatalog(cfg.Tools.CatalogPath)
		if err != nil {
			return nil, err
		}
		descriptors = tool.MergeDescriptors(descriptors, extra)
	}
	return tool.NewRegistry(descriptors...)
}

func createConversationStore(cfg *config.Config) (convo.Store, error) {
	switch cfg.Conversation.Driver {
	case "", "memory":
		return convo.NewMemoryStore(), nil
	case "mysql":
		return convo.NewMySQLStore(cfg.Conversation.DSN)
	default:
		return nil, fmt.Errorf("未知的会话存储驱动: %s", cfg.Conversation.Driver)
	}
}

func createJobStore(cfg *config.Config) (job.Store, error) {
	switch cfg.Conversation.Driver {
	case "", "memory":
		return job.NewMemoryStore(), nil
	case "mysql":
		return job.NewMySQLStore(cfg.Conversation.DSN)
	default:
		return nil, fmt.Errorf("未知的任务存储驱动: %s", cfg.Conversation.Driver)
	}
}

func createJobQueue(cfg *config.Config) (job.Queue, error) {
	switch cfg.JobQueue.Driver {
	case "", "memory":
		return job.NewMemoryQueue(1024), nil
	case "redis":
		return job.NewRedisQueue(job.RedisQueueConfig{
			Address:   cfg.JobQueue.Redis.Address,
			Password:  cfg.JobQueue.Redis.Password,
			DB:        cfg.JobQueue.Redis.DB,
			Queue:     cfg.JobQueue.Redis.Queue,
			BlockWait: time.Duration(cfg.JobQueue.Redis.BlockWaitSeconds) * time.Second,
		})
	case "rabbitmq":
		return job.NewRabbitMQQueue(job.RabbitMQConfig{
			URL:        cfg.JobQueue.RabbitMQ.URL,
			Queue:      cfg.JobQueue.RabbitMQ.Queue,
			Prefetch:   cfg.JobQueue.RabbitMQ.Prefetch,
			Durable:    cfg.JobQueue.RabbitMQ.Durable,
			AutoDelete: cfg.JobQueue.RabbitMQ.AutoDelete,
		})
	default:
		return nil, fmt.Errorf("未知的队列驱动: %s", cfg.JobQueue.Driver)
	}
}
