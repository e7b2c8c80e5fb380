package planner

import "testing"

func TestExtractPlanFromFencedBlock(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"analysis\":\"查询余额\",\"isOffTopic\":false,\"requiresTools\":true,\"executionType\":\"sequential\",\"steps\":[{\"tool\":\"get_balance\",\"parameters\":{\"address\":\"0xabc\"}}]}\n```"

	result := ExtractPlan(raw)
	if !result.Ok() {
		t.Fatalf("extract failed: %s", result.Err)
	}
	if result.Plan.Analysis != "查询余额" {
		t.Fatalf("unexpected analysis: %q", result.Plan.Analysis)
	}
	if len(result.Plan.Steps) != 1 || result.Plan.Steps[0].Tool != "get_balance" {
		t.Fatalf("unexpected steps: %+v", result.Plan.Steps)
	}
}

func TestExtractPlanFromBareObject(t *testing.T) {
	raw := `Sure. {"analysis":"ok","isOffTopic":false,"requiresTools":false,"steps":[]} hope this helps`

	result := ExtractPlan(raw)
	if !result.Ok() {
		t.Fatalf("extract failed: %s", result.Err)
	}
	if result.Plan.RequiresTools {
		t.Fatalf("requiresTools should be false")
	}
}

func TestExtractPlanHandlesNestedBraces(t *testing.T) {
	raw := `{"analysis":"nested {braces} inside strings","isOffTopic":false,"requiresTools":true,"steps":[{"tool":"fetch_price","parameters":{"symbol":"BTC"}}]}`

	result := ExtractPlan(raw)
	if !result.Ok() {
		t.Fatalf("extract failed: %s", result.Err)
	}
	if result.Plan.Steps[0].Parameters["symbol"] != "BTC" {
		t.Fatalf("nested object parsing failed: %+v", result.Plan.Steps)
	}
}

func TestExtractPlanMissingRequiredField(t *testing.T) {
	raw := `{"analysis":"ok","steps":[]}`

	result := ExtractPlan(raw)
	if result.Ok() {
		t.Fatalf("expected failure for missing required fields")
	}
}

func TestExtractPlanRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken"} {
		if result := ExtractPlan(raw); result.Ok() {
			t.Fatalf("expected failure for input %q", raw)
		}
	}
}
