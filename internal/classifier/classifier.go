// Package classifier implements the cheap off-topic pre-filter that runs
// before any model call.
package classifier

import "regexp"

// Rule 是一条领域排除规则，按表内顺序求值，首个命中即判定离题。
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Guarded 的规则在消息包含领域词时不生效。
	Guarded bool
}

// Classifier 按序匹配排除规则。它只做否定性预过滤：命中即短路为
// 离题，未命中不代表在题，后续由模型自行判断。
type Classifier struct {
	rules       []Rule
	domainTerms *regexp.Regexp
}

var defaultRules = []Rule{
	{Name: "politics", Pattern: regexp.MustCompile(`(?i)\b(politic\w*|election|president|government|vote|congress|parliament)\b`)},
	{Name: "weather", Pattern: regexp.MustCompile(`(?i)\b(weather|temperature|forecast|rain|snow|sunny|humidity)\b`)},
	{Name: "entertainment", Pattern: regexp.MustCompile(`(?i)\b(movie|film|music|song|singer|actor|actress|netflix|concert)\b`)},
	{Name: "sports", Pattern: regexp.MustCompile(`(?i)\b(football|soccer|basketball|baseball|tennis|nba|fifa|world cup|olympics)\b`)},
	{Name: "health", Pattern: regexp.MustCompile(`(?i)\b(doctor|medicine|symptom|disease|headache|hospital|diagnosis)\b`)},
	{Name: "who-is", Pattern: regexp.MustCompile(`(?i)^\s*who\s+is\s+`), Guarded: true},
}

var defaultDomainTerms = regexp.MustCompile(`(?i)\b(crypto\w*|blockchain|bitcoin|btc|ethereum|eth|solana|sol|token|coin|wallet|address|balance|nft|defi|erc20|erc721|transfer|mint|deploy|price|gas|contract)\b`)

// NewDefault 构建内置规则表的分类器。
func NewDefault() *Classifier {
	return &Classifier{rules: defaultRules, domainTerms: defaultDomainTerms}
}

// New 构建自定义规则表的分类器。
func New(rules []Rule, domainTerms *regexp.Regexp) *Classifier {
	return &Classifier{rules: rules, domainTerms: domainTerms}
}

// IsOffTopic 判断消息是否偏离领域。
func (c *Classifier) IsOffTopic(message string) bool {
	if c == nil || message == "" {
		return false
	}
	for _, rule := range c.rules {
		if !rule.Pattern.MatchString(message) {
			continue
		}
		if rule.Guarded && c.domainTerms != nil && c.domainTerms.MatchString(message) {
			continue
		}
		return true
	}
	return false
}
