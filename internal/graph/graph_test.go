package graph

import (
	"testing"

	"AgentFlow-Chain/internal/planner"
)

func TestBuildSequentialSuccessors(t *testing.T) {
	plan := &planner.Plan{
		ExecutionType: planner.ExecutionSequential,
		Steps: []planner.Step{
			{Tool: "get_balance"},
			{Tool: "fetch_price"},
			{Tool: "transfer"},
		},
	}

	steps := Build(plan)
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	wantSuccessors := []string{"fetch_price", "transfer", ""}
	for i, step := range steps {
		if step.Successor != wantSuccessors[i] {
			t.Errorf("step %d successor = %q, want %q", i, step.Successor, wantSuccessors[i])
		}
		if step.Position != i {
			t.Errorf("step %d position = %d", i, step.Position)
		}
	}
}

func TestBuildParallelHasNoSuccessors(t *testing.T) {
	plan := &planner.Plan{
		ExecutionType: planner.ExecutionParallel,
		Steps: []planner.Step{
			{Tool: "get_balance"},
			{Tool: "fetch_price"},
		},
	}

	for _, step := range Build(plan) {
		if step.Successor != "" {
			t.Fatalf("parallel steps must not carry successors: %+v", step)
		}
	}
}

func TestBuildEmptyPlan(t *testing.T) {
	steps := Build(&planner.Plan{ExecutionType: planner.ExecutionNone})
	if steps == nil || len(steps) != 0 {
		t.Fatalf("empty plan must produce an empty non-nil graph: %v", steps)
	}
	if steps = Build(nil); steps == nil || len(steps) != 0 {
		t.Fatalf("nil plan must produce an empty non-nil graph: %v", steps)
	}
}

func TestBuildFillsNilParameters(t *testing.T) {
	plan := &planner.Plan{
		ExecutionType: planner.ExecutionSequential,
		Steps:         []planner.Step{{Tool: "get_balance"}},
	}
	steps := Build(plan)
	if steps[0].Parameters == nil {
		t.Fatalf("parameters must never be nil")
	}
}
