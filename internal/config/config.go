package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Config 描述了 AgentFlow 在启动阶段需要加载的核心配置。
type Config struct {
	Server       ServerConfig       `json:"server"`
	LLM          LLMConfig          `json:"llm"`
	Tools        ToolsConfig        `json:"tools"`
	Web3         Web3Config         `json:"web3"`
	Conversation ConversationConfig `json:"conversation"`
	JobQueue     JobQueueConfig     `json:"job_queue"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Logging      LoggingConfig      `json:"logging"`
}

// ServerConfig 控制 API 服务的监听地址等参数。
type ServerConfig struct {
	Address string `json:"address"`
}

// LLMConfig 按优先级列出可用的推理服务，首个为主力，其余为降级备选。
type LLMConfig struct {
	Providers []ProviderConfig `json:"providers"`
}

// ProviderConfig 描述一个 OpenAI 兼容推理服务的接入信息。
type ProviderConfig struct {
	Name           string `json:"name"`
	APIKey         string `json:"api_key"`
	APIKeyEnv      string `json:"api_key_env"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout 返回推理调用的超时时间。
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ToolsConfig 描述工具目录与工具后端的接入方式。
type ToolsConfig struct {
	CatalogPath string `json:"catalog_path"`
	BackendURL  string `json:"backend_url"`
}

// Web3Config 包含访问区块链节点所需的 RPC 地址。
type Web3Config struct {
	RPCURL string `json:"rpc_url"`
	Name   string `json:"name"`
}

// ConversationConfig 描述会话日志的持久化方式。
type ConversationConfig struct {
	Driver       string `json:"driver"`
	DSN          string `json:"dsn"`
	HistoryDepth int    `json:"history_depth"`
}

// JobQueueConfig 描述异步任务队列的驱动与参数。
type JobQueueConfig struct {
	Driver     string         `json:"driver"`
	Worker     int            `json:"worker"`
	MaxRetries int            `json:"max_retries"`
	Redis      RedisConfig    `json:"redis"`
	RabbitMQ   RabbitMQConfig `json:"rabbitmq"`
}

// RedisConfig 描述 Redis 队列连接参数。
type RedisConfig struct {
	Address          string `json:"address"`
	Password         string `json:"password"`
	DB               int    `json:"db"`
	Queue            string `json:"queue"`
	BlockWaitSeconds int    `json:"block_wait_seconds"`
}

// RabbitMQConfig 描述 RabbitMQ 队列连接参数。
type RabbitMQConfig struct {
	URL        string `json:"url"`
	Queue      string `json:"queue"`
	Prefetch   int    `json:"prefetch"`
	Durable    bool   `json:"durable"`
	AutoDelete bool   `json:"auto_delete"`
}

// OrchestratorConfig 控制编排引擎的上下文窗口与采样参数。
type OrchestratorConfig struct {
	TokenBudget int     `json:"token_budget"`
	Temperature float64 `json:"temperature"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level       string         `json:"level"`
	Format      string         `json:"format"`
	OutputPaths []string       `json:"output_paths"`
	Audit       AuditLogConfig `json:"audit"`
}

// AuditLogConfig 控制审计日志。
type AuditLogConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Conversation.Driver == "" {
		c.Conversation.Driver = "memory"
	}
	if c.Conversation.HistoryDepth <= 0 {
		c.Conversation.HistoryDepth = 20
	}

	if c.JobQueue.Driver == "" {
		c.JobQueue.Driver = "memory"
	}
	if c.JobQueue.Worker <= 0 {
		c.JobQueue.Worker = 2
	}
	if c.JobQueue.MaxRetries <= 0 {
		c.JobQueue.MaxRetries = 3
	}

	if c.Orchestrator.TokenBudget <= 0 {
		c.Orchestrator.TokenBudget = 2000
	}
	if c.Orchestrator.Temperature <= 0 {
		c.Orchestrator.Temperature = 0.3
	}

	if c.Tools.CatalogPath != "" && !filepath.IsAbs(c.Tools.CatalogPath) {
		c.Tools.CatalogPath = filepath.Join(baseDir, c.Tools.CatalogPath)
	}
	if c.Logging.Audit.Path != "" && !filepath.IsAbs(c.Logging.Audit.Path) {
		c.Logging.Audit.Path = filepath.Join(baseDir, c.Logging.Audit.Path)
	}
}
