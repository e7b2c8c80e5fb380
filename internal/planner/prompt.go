package planner

import (
	"fmt"
	"strings"

	"AgentFlow-Chain/internal/convo"
	"AgentFlow-Chain/internal/tool"
)

// SystemPrompt 约束模型的输出形态：整个回复必须是单个 JSON 对象。
const SystemPrompt = "You are the planning engine of a blockchain assistant. " +
	"Decide which tools are needed to fulfil the user's request. " +
	"Respond with exactly one JSON object and nothing else."

// RenderPrompt 把工具目录、窗口内历史与当前请求渲染成规划提示词。
func RenderPrompt(registry *tool.Registry, window []convo.Message, userMessage string) string {
	var builder strings.Builder

	builder.WriteString("## Available tools\n")
	for _, desc := range registry.Descriptors() {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", desc.Name, desc.Description))
		for _, param := range desc.Parameters {
			required := "optional"
			if param.Required {
				required = "required"
			}
			builder.WriteString(fmt.Sprintf("    - %s (%s, %s): %s\n", param.Name, param.Type, required, param.Description))
		}
		for _, example := range desc.Examples {
			builder.WriteString(fmt.Sprintf("    e.g. %q\n", example))
		}
	}

	if len(window) > 0 {
		builder.WriteString("\n## Recent conversation\n")
		for _, msg := range window {
			builder.WriteString(fmt.Sprintf("[%s] %s\n", msg.Role, msg.Content))
		}
	}

	builder.WriteString("\n## Request\n")
	builder.WriteString(userMessage)

	builder.WriteString("\n\n## Rules\n")
	builder.WriteString(`Reply with one JSON object:
{"analysis": string, "isOffTopic": bool, "requiresTools": bool,
 "executionType": "sequential"|"parallel"|"none",
 "steps": [{"tool": string, "reason": string, "parameters": object, "dependsOn": [string]}],
 "missingInfo": [string], "complexity": "simple"|"moderate"|"complex"}
- Use "sequential" only when a later step consumes an earlier step's output;
  reference that output in parameters as "$<tool>.<field>".
- Use "parallel" when steps are independent; their dependsOn must be empty.
- List every parameter the user did not provide in missingInfo.
- Addresses must be 0x-prefixed hex; flag malformed ones in missingInfo.
- Only use tools from the list above.`)

	return builder.String()
}
