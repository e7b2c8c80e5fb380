// Package graph 把规范化后的执行计划转换为带后继指针的步骤序列。
// 纯转换，对已规范化的输入没有失败路径。
package graph

import "AgentFlow-Chain/internal/planner"

// Step 是派生出的可执行步骤。顺序计划中 Successor 指向下一步的工具，
// 末步与并行计划的 Successor 为空。
type Step struct {
	Tool       string         `json:"tool"`
	Reason     string         `json:"reason,omitempty"`
	Parameters map[string]any `json:"parameters"`
	Successor  string         `json:"next_tool,omitempty"`
	Position   int            `json:"position"`
}

// Build 根据计划构建执行图。空计划产出空图。并行与 none 计划的步骤
// 不携带任何后继或依赖：残留的 dependsOn 在 Normalize 阶段已被清空，
// 这里不再赋予隐含顺序。
func Build(plan *planner.Plan) []Step {
	if plan == nil || len(plan.Steps) == 0 {
		return []Step{}
	}

	steps := make([]Step, 0, len(plan.Steps))
	sequential := plan.ExecutionType == planner.ExecutionSequential
	for i, src := range plan.Steps {
		step := Step{
			Tool:       src.Tool,
			Reason:     src.Reason,
			Parameters: src.Parameters,
			Position:   i,
		}
		if sequential && i < len(plan.Steps)-1 {
			step.Successor = plan.Steps[i+1].Tool
		}
		if step.Parameters == nil {
			step.Parameters = map[string]any{}
		}
		steps = append(steps, step)
	}
	return steps
}
