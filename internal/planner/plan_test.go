package planner

import (
	"testing"

	"AgentFlow-Chain/internal/tool"
)

func TestParseRef(t *testing.T) {
	cases := []struct {
		value string
		want  Ref
		ok    bool
	}{
		{"$get_balance.balance", Ref{Tool: "get_balance", Field: "balance"}, true},
		{"$fetch_price", Ref{Tool: "fetch_price"}, true},
		{" $transfer.tx_hash ", Ref{Tool: "transfer", Field: "tx_hash"}, true},
		{"plain value", Ref{}, false},
		{"$", Ref{}, false},
		{"$a.b.c", Ref{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseRef(tc.value)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseRef(%q) = %+v,%v want %+v,%v", tc.value, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeDropsUnknownTools(t *testing.T) {
	plan := &Plan{
		Analysis:      "mixed",
		RequiresTools: true,
		ExecutionType: ExecutionSequential,
		Steps: []Step{
			{Tool: "get_balance"},
			{Tool: "launch_rocket"},
		},
	}
	Normalize(plan, tool.DefaultRegistry(), nil)

	if len(plan.Steps) != 1 || plan.Steps[0].Tool != "get_balance" {
		t.Fatalf("unknown tool was not dropped: %+v", plan.Steps)
	}
	if !plan.RequiresTools {
		t.Fatalf("requiresTools should stay true while steps remain")
	}
}

func TestNormalizeEmptyPlanClearsRequiresTools(t *testing.T) {
	plan := &Plan{
		Analysis:      "nothing usable",
		RequiresTools: true,
		ExecutionType: ExecutionSequential,
		Steps:         []Step{{Tool: "launch_rocket"}},
	}
	Normalize(plan, tool.DefaultRegistry(), nil)

	if plan.RequiresTools {
		t.Fatalf("requiresTools must be false for an empty plan")
	}
	if plan.ExecutionType != ExecutionNone {
		t.Fatalf("empty plan must be none, got %s", plan.ExecutionType)
	}
}

func TestNormalizeConvertsRefPlaceholders(t *testing.T) {
	plan := &Plan{
		Analysis:      "chained",
		RequiresTools: true,
		ExecutionType: ExecutionSequential,
		Steps: []Step{
			{Tool: "get_balance", Parameters: map[string]any{"address": "0xabc"}},
			{Tool: "transfer", Parameters: map[string]any{"amount": "$get_balance.balance"}},
		},
	}
	Normalize(plan, tool.DefaultRegistry(), nil)

	ref, ok := plan.Steps[1].Parameters["amount"].(Ref)
	if !ok {
		t.Fatalf("placeholder was not converted: %+v", plan.Steps[1].Parameters)
	}
	if ref.Tool != "get_balance" || ref.Field != "balance" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if addr := plan.Steps[0].Parameters["address"]; addr != "0xabc" {
		t.Fatalf("plain string parameter must stay untouched: %v", addr)
	}
}

func TestNormalizeInfersExecutionType(t *testing.T) {
	plan := &Plan{
		Analysis: "two independent lookups",
		Steps: []Step{
			{Tool: "get_balance"},
			{Tool: "fetch_price"},
		},
	}
	Normalize(plan, tool.DefaultRegistry(), nil)

	if plan.ExecutionType != ExecutionParallel {
		t.Fatalf("multi-step plan without type should become parallel, got %s", plan.ExecutionType)
	}
	if plan.Complexity != ComplexitySimple {
		t.Fatalf("missing complexity should default to simple")
	}
}

func TestNormalizeClearsDependsOnForParallel(t *testing.T) {
	plan := &Plan{
		Analysis:      "parallel",
		ExecutionType: ExecutionParallel,
		Steps: []Step{
			{Tool: "get_balance", DependsOn: []string{"fetch_price"}},
			{Tool: "fetch_price"},
		},
	}
	Normalize(plan, tool.DefaultRegistry(), nil)

	for _, step := range plan.Steps {
		if len(step.DependsOn) != 0 {
			t.Fatalf("parallel steps must not carry dependencies: %+v", step)
		}
	}
}
