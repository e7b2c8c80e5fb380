package planner

import "regexp"

// fallbackRule 是降级规划的一条 (谓词, 工具) 规则。规则表有序求值，
// 每个工具至多入选一次。
type fallbackRule struct {
	pattern *regexp.Regexp
	tool    string
}

// 规则顺序即步骤顺序。不推断依赖与参数：没有模型推理时无法安全
// 推断执行次序，保守默认为完全独立。
var fallbackRules = []fallbackRule{
	{regexp.MustCompile(`(?i)\btoken\s+balance\b`), "get_token_balance"},
	{regexp.MustCompile(`(?i)\bbalance\b|余额`), "get_balance"},
	{regexp.MustCompile(`(?i)\b(price|quote|worth|bitcoin|btc|ethereum|solana)\b|行情|价格`), "fetch_price"},
	{regexp.MustCompile(`(?i)\b(transfer|send)\b|转账`), "transfer"},
	{regexp.MustCompile(`(?i)\bdeploy\b.*\b(token|erc20)\b|发行代币`), "deploy_erc20"},
	{regexp.MustCompile(`(?i)\b(deploy|create)\b.*\b(nft|erc721|collection)\b`), "deploy_erc721"},
	{regexp.MustCompile(`(?i)\bmint\b`), "mint_nft"},
	{regexp.MustCompile(`(?i)\btoken\s+info\b|代币信息`), "get_token_info"},
	{regexp.MustCompile(`(?i)\bnft\s+info\b`), "get_nft_info"},
}

// Fallback 是合成失败时的确定性降级规划：对同一条消息比特级一致。
// 命中的每个工具作为独立步骤加入，参数为空，executionType 恒为
// parallel，complexity 恒为 simple。
func Fallback(userMessage string) *Plan {
	steps := make([]Step, 0, 2)
	seen := make(map[string]struct{}, len(fallbackRules))
	for _, rule := range fallbackRules {
		if _, ok := seen[rule.tool]; ok {
			continue
		}
		if !rule.pattern.MatchString(userMessage) {
			continue
		}
		seen[rule.tool] = struct{}{}
		steps = append(steps, Step{
			Tool:       rule.tool,
			Reason:     "keyword match",
			Parameters: map[string]any{},
			DependsOn:  []string{},
		})
	}
	return &Plan{
		Analysis:      "计划合成不可用，按关键词路由",
		IsOffTopic:    false,
		RequiresTools: len(steps) > 0,
		ExecutionType: ExecutionParallel,
		Steps:         steps,
		MissingInfo:   []string{},
		Complexity:    ComplexitySimple,
	}
}
