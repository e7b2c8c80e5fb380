package planner

import (
	"reflect"
	"testing"
)

func TestFallbackPriceQuery(t *testing.T) {
	plan := Fallback("What's the current price of Bitcoin?")

	if !plan.RequiresTools {
		t.Fatalf("price query should require tools")
	}
	if len(plan.Steps) != 1 || plan.Steps[0].Tool != "fetch_price" {
		t.Fatalf("unexpected steps: %+v", plan.Steps)
	}
	if plan.ExecutionType != ExecutionParallel {
		t.Fatalf("fallback plans must be parallel, got %s", plan.ExecutionType)
	}
	if plan.Complexity != ComplexitySimple {
		t.Fatalf("fallback plans must be simple, got %s", plan.Complexity)
	}
}

func TestFallbackMultipleKeywords(t *testing.T) {
	plan := Fallback("check my balance and transfer 1 ETH")

	tools := make([]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		tools = append(tools, step.Tool)
	}
	want := []string{"get_balance", "transfer"}
	if !reflect.DeepEqual(tools, want) {
		t.Fatalf("tools = %v, want %v", tools, want)
	}
}

func TestFallbackTokenBalanceBeforeBalance(t *testing.T) {
	plan := Fallback("show the token balance of 0xabc")

	if len(plan.Steps) == 0 || plan.Steps[0].Tool != "get_token_balance" {
		t.Fatalf("token balance rule must fire first: %+v", plan.Steps)
	}
}

func TestFallbackChineseKeywords(t *testing.T) {
	plan := Fallback("帮我查一下余额")

	if len(plan.Steps) != 1 || plan.Steps[0].Tool != "get_balance" {
		t.Fatalf("unexpected steps: %+v", plan.Steps)
	}
}

func TestFallbackNoMatch(t *testing.T) {
	plan := Fallback("hello there")

	if plan.RequiresTools || len(plan.Steps) != 0 {
		t.Fatalf("unmatched message should produce an empty plan: %+v", plan)
	}
	if plan.IsOffTopic {
		t.Fatalf("fallback never marks messages off topic")
	}
	if plan.MissingInfo == nil {
		t.Fatalf("missingInfo must be an empty slice")
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	message := "transfer some ETH and mint an NFT"
	first := Fallback(message)
	second := Fallback(message)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fallback plans differ between runs")
	}
}
