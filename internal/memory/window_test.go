package memory

import (
	"strings"
	"testing"

	"AgentFlow-Chain/internal/convo"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 40), 10},
		{"查询余额", 1},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.content); got != tc.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}

func TestBuildNewestMessageAlwaysIncluded(t *testing.T) {
	b := NewBuilder(10)
	history := []convo.Message{
		{Role: convo.RoleUser, Content: "older", TokenCost: 50},
		{Role: convo.RoleUser, Content: "newest", TokenCost: 100},
	}

	window := b.Build("", history)
	if len(window.Messages) != 1 {
		t.Fatalf("expected only the newest message, got %d", len(window.Messages))
	}
	if window.Messages[0].Content != "newest" {
		t.Fatalf("newest message missing: %+v", window.Messages)
	}
	if window.TotalTokens <= b.Budget() {
		t.Fatalf("overflow should be accepted, total=%d budget=%d", window.TotalTokens, b.Budget())
	}
}

func TestBuildDropsWholeMessagesOldestFirst(t *testing.T) {
	b := NewBuilder(30)
	history := []convo.Message{
		{Role: convo.RoleUser, Content: "first", TokenCost: 10},
		{Role: convo.RoleAssistant, Content: "second", TokenCost: 8},
		{Role: convo.RoleUser, Content: "third", TokenCost: 5},
	}

	window := b.Build("", history)
	// newest costs 5+4, second 8+4: total 21. first would add 14 and bust the budget.
	if len(window.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(window.Messages))
	}
	if window.Messages[0].Content != "second" || window.Messages[1].Content != "third" {
		t.Fatalf("unexpected window order: %+v", window.Messages)
	}
	if window.TotalTokens != 21 {
		t.Fatalf("unexpected total tokens: %d", window.TotalTokens)
	}
}

func TestBuildKeepsChronologicalOrder(t *testing.T) {
	b := NewBuilder(1000)
	history := []convo.Message{
		{Role: convo.RoleUser, Content: "a", TokenCost: 1},
		{Role: convo.RoleAssistant, Content: "b", TokenCost: 1},
		{Role: convo.RoleUser, Content: "c", TokenCost: 1},
	}

	window := b.Build("system", history)
	if len(window.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(window.Messages))
	}
	if window.Messages[0].Role != convo.RoleSystem {
		t.Fatalf("system prompt must come first")
	}
	for i, want := range []string{"a", "b", "c"} {
		if window.Messages[i+1].Content != want {
			t.Fatalf("message %d = %q, want %q", i+1, window.Messages[i+1].Content, want)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewBuilder(25)
	history := []convo.Message{
		{Role: convo.RoleUser, Content: "one", TokenCost: 6},
		{Role: convo.RoleAssistant, Content: "two", TokenCost: 6},
		{Role: convo.RoleUser, Content: "three", TokenCost: 6},
	}

	first := b.Build("", history)
	second := b.Build("", history)
	if first.TotalTokens != second.TotalTokens || len(first.Messages) != len(second.Messages) {
		t.Fatalf("window construction is not deterministic")
	}
	for i := range first.Messages {
		if first.Messages[i] != second.Messages[i] {
			t.Fatalf("message %d differs between runs", i)
		}
	}
}
