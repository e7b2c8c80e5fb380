// Package planner 负责把自然语言请求变成结构化的执行计划：优先由大模型
// 合成，失败时退回确定性的关键词规划。
package planner

import (
	"log/slog"
	"regexp"
	"strings"

	xerrors "AgentFlow-Chain/internal/errors"
	"AgentFlow-Chain/internal/tool"
	"AgentFlow-Chain/pkg/logger"
)

// ExecutionType 表示计划内各步骤的调度方式。
type ExecutionType string

const (
	ExecutionSequential ExecutionType = "sequential"
	ExecutionParallel   ExecutionType = "parallel"
	ExecutionNone       ExecutionType = "none"
)

// Complexity 是计划的复杂度标签。
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Ref 是参数值中的结果占位符：引用前序工具输出中的某个字段。
// 计划 JSON 中写作字符串 "$<tool>.<field>"，Field 可省略表示整个结果。
type Ref struct {
	Tool  string `json:"tool"`
	Field string `json:"field,omitempty"`
}

// Step 是计划中的一步工具调用。
type Step struct {
	Tool       string         `json:"tool"`
	Reason     string         `json:"reason"`
	Parameters map[string]any `json:"parameters"`
	DependsOn  []string       `json:"dependsOn"`
}

// Plan 是一次请求的完整执行计划，请求级别的值对象，从不持久化。
type Plan struct {
	Analysis      string        `json:"analysis"`
	IsOffTopic    bool          `json:"isOffTopic"`
	RequiresTools bool          `json:"requiresTools"`
	ExecutionType ExecutionType `json:"executionType"`
	Steps         []Step        `json:"steps"`
	MissingInfo   []string      `json:"missingInfo"`
	Complexity    Complexity    `json:"complexity"`
}

const (
	CodeSynthesisFailure xerrors.Code = "PLAN_SYNTHESIS_FAILED"
	CodePlanInvalid      xerrors.Code = "PLAN_INVALID"
)

// ErrSynthesis 是合成失败的统一信号。任何供应商异常或校验失败都收敛
// 到这个错误，由调用方路由到降级规划器，绝不向外抛出原始错误。
var ErrSynthesis = xerrors.New(CodeSynthesisFailure, "plan synthesis failed")

func init() {
	xerrors.Register(CodeSynthesisFailure, xerrors.Attributes{
		Message:   "plan synthesis failed",
		Severity:  xerrors.SeverityWarning,
		Retryable: true,
		Alert:     false,
	})
	xerrors.Register(CodePlanInvalid, xerrors.Attributes{
		Message:   "plan validation failed",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
}

// refPattern 匹配结果占位符 $tool 或 $tool.field。
var refPattern = regexp.MustCompile(`^\$([A-Za-z0-9_]+)(?:\.([A-Za-z0-9_]+))?$`)

// ParseRef 尝试把参数字符串解析为结果占位符。
func ParseRef(value string) (Ref, bool) {
	match := refPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return Ref{}, false
	}
	return Ref{Tool: match[1], Field: match[2]}, true
}

// OffTopicPlan 返回离题短路时的固定计划。
func OffTopicPlan(analysis string) *Plan {
	if analysis == "" {
		analysis = "请求与链上能力无关"
	}
	return &Plan{
		Analysis:      analysis,
		IsOffTopic:    true,
		RequiresTools: false,
		ExecutionType: ExecutionNone,
		Steps:         []Step{},
		MissingInfo:   []string{},
		Complexity:    ComplexitySimple,
	}
}

// Normalize 把模型产出的计划整理为可执行的形态：
//   - 丢弃目录中不存在的工具步骤（记录日志）；
//   - 为缺失的 dependsOn、parameters 填充空值；
//   - 把 "$tool.field" 形式的参数替换为类型化的 Ref；
//   - 非顺序计划清空全部 dependsOn；
//   - 保持 steps 为空与 requiresTools 互为镜像。
func Normalize(plan *Plan, registry *tool.Registry, log *slog.Logger) {
	if plan == nil {
		return
	}
	if log == nil {
		log = logger.Named("planner")
	}

	switch plan.ExecutionType {
	case ExecutionSequential, ExecutionParallel, ExecutionNone:
	default:
		if len(plan.Steps) > 1 {
			plan.ExecutionType = ExecutionParallel
		} else if len(plan.Steps) == 1 {
			plan.ExecutionType = ExecutionSequential
		} else {
			plan.ExecutionType = ExecutionNone
		}
	}
	switch plan.Complexity {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
	default:
		plan.Complexity = ComplexitySimple
	}

	kept := make([]Step, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		step.Tool = strings.TrimSpace(step.Tool)
		if !registry.Contains(step.Tool) {
			log.Warn("计划引用了未注册的工具，已丢弃", slog.String("tool", step.Tool))
			continue
		}
		if step.Parameters == nil {
			step.Parameters = map[string]any{}
		}
		for key, value := range step.Parameters {
			raw, ok := value.(string)
			if !ok {
				continue
			}
			if ref, ok := ParseRef(raw); ok {
				step.Parameters[key] = ref
			}
		}
		if step.DependsOn == nil || plan.ExecutionType != ExecutionSequential {
			step.DependsOn = []string{}
		}
		kept = append(kept, step)
	}
	plan.Steps = kept

	if len(plan.Steps) == 0 {
		plan.RequiresTools = false
		plan.ExecutionType = ExecutionNone
	} else {
		plan.RequiresTools = true
	}
	if plan.MissingInfo == nil {
		plan.MissingInfo = []string{}
	}
}
