package tool

import (
	xerrors "AgentFlow-Chain/internal/errors"
)

// Parameter 描述工具的一个入参。
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// Descriptor 是工具目录中的一条不可变条目。Endpoint 与 Method 描述
// 工具后端的 HTTP 接入点，路径中的 {param} 在调用时由同名参数替换。
type Descriptor struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Parameters  []Parameter `json:"parameters" yaml:"parameters"`
	Examples    []string    `json:"examples,omitempty" yaml:"examples"`
	Endpoint    string      `json:"endpoint,omitempty" yaml:"endpoint"`
	Method      string      `json:"method,omitempty" yaml:"method"`
}

const (
	CodeToolUnknown     xerrors.Code = "TOOL_UNKNOWN"
	CodeToolUnsupported xerrors.Code = "TOOL_UNSUPPORTED"
	CodeToolExecution   xerrors.Code = "TOOL_EXECUTION_FAILED"
)

var (
	// ErrUnknownTool 表示目录中不存在该工具。
	ErrUnknownTool = xerrors.New(CodeToolUnknown, "unknown tool")
	// ErrUnsupported 表示当前执行器无法处理该工具，调用方可以降级到下一个执行器。
	ErrUnsupported = xerrors.New(CodeToolUnsupported, "tool not supported by this invoker")
)

func init() {
	xerrors.Register(CodeToolUnknown, xerrors.Attributes{
		Message:   "unknown tool",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeToolUnsupported, xerrors.Attributes{
		Message:   "tool not supported by this invoker",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeToolExecution, xerrors.Attributes{
		Message:   "tool execution failed",
		Severity:  xerrors.SeverityWarning,
		Retryable: true,
		Alert:     false,
	})
}
