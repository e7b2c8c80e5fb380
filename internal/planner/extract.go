package planner

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParseResult 是计划提取的显式结果，避免用异常驱动解析控制流。
type ParseResult struct {
	Plan *Plan
	Err  string
}

// Ok 表示提取成功。
func (r ParseResult) Ok() bool {
	return r.Plan != nil
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractPlan 从模型回复中提取计划 JSON。按固定顺序尝试：先找围栏
// 代码块，再找首个花括号配平的片段，首个解析成功者生效。字段校验
// 只要求 analysis 非空且顶层结构可解析，其余交给 Normalize。
func ExtractPlan(raw string) ParseResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParseResult{Err: "empty completion"}
	}

	if match := fencedBlock.FindStringSubmatch(raw); match != nil {
		if result := tryDecode(match[1]); result.Ok() {
			return result
		}
	}

	if candidate := firstBalancedObject(raw); candidate != "" {
		if result := tryDecode(candidate); result.Ok() {
			return result
		}
	}

	return ParseResult{Err: "no parsable JSON object in completion"}
}

func tryDecode(candidate string) ParseResult {
	// 先用宽松结构探测必填字段是否存在，避免缺省值掩盖缺字段。
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return ParseResult{Err: err.Error()}
	}
	for _, field := range []string{"analysis", "isOffTopic", "requiresTools"} {
		if _, ok := probe[field]; !ok {
			return ParseResult{Err: "missing required field " + field}
		}
	}

	var plan Plan
	if err := json.Unmarshal([]byte(candidate), &plan); err != nil {
		return ParseResult{Err: err.Error()}
	}
	return ParseResult{Plan: &plan}
}

// firstBalancedObject 返回文本中首个花括号配平的 {...} 片段。
func firstBalancedObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
