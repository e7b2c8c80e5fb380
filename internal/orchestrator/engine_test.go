package orchestrator

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"AgentFlow-Chain/internal/convo"
	"AgentFlow-Chain/internal/llm"
	"AgentFlow-Chain/internal/planner"
	"AgentFlow-Chain/internal/tool"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (s *stubProvider) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubInvoker struct {
	results map[string]any
	fail    map[string]error
	calls   []string
}

func (s *stubInvoker) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	s.calls = append(s.calls, name)
	if err, ok := s.fail[name]; ok {
		return nil, err
	}
	return s.results[name], nil
}

func TestHandleRejectsEmptyMessage(t *testing.T) {
	engine := New(&stubProvider{}, tool.DefaultRegistry())
	if _, err := engine.Handle(context.Background(), Request{Message: "   "}); err == nil {
		t.Fatalf("blank message must be rejected")
	}
}

func TestHandleSequentialPlanExecutesSteps(t *testing.T) {
	provider := &stubProvider{reply: `{"analysis":"查询 BTC 价格","isOffTopic":false,"requiresTools":true,"executionType":"sequential","steps":[{"tool":"fetch_price","reason":"价格查询","parameters":{"symbol":"BTC"}}],"complexity":"simple"}`}
	invoker := &stubInvoker{results: map[string]any{
		"fetch_price": map[string]any{"usd": 65000.0},
	}}

	engine := New(provider, tool.DefaultRegistry(), WithInvoker(invoker))
	resp, err := engine.Handle(context.Background(), Request{ConversationID: "c1", Message: "What's the price of BTC?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.RequiresTools || len(resp.Steps) != 1 {
		t.Fatalf("unexpected plan: %+v", resp)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Tool != "fetch_price" {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].NextTool != "" {
		t.Fatalf("single step must have no successor")
	}
	if len(resp.Results) != 1 || !resp.Results[0].Success {
		t.Fatalf("unexpected results: %+v", resp.Results)
	}
	if len(invoker.calls) != 1 {
		t.Fatalf("invoker calls: %v", invoker.calls)
	}
}

func TestHandleParallelFailureIsolation(t *testing.T) {
	provider := &stubProvider{reply: `{"analysis":"查询余额与价格","isOffTopic":false,"requiresTools":true,"executionType":"parallel","steps":[{"tool":"get_balance","parameters":{"address":"0xabc"}},{"tool":"fetch_price","parameters":{"symbol":"ETH"}}],"complexity":"moderate"}`}
	invoker := &stubInvoker{
		results: map[string]any{"get_balance": map[string]any{"balance": "42"}},
		fail:    map[string]error{"fetch_price": errors.New("api down")},
	}

	engine := New(provider, tool.DefaultRegistry(), WithInvoker(invoker))
	resp, err := engine.Handle(context.Background(), Request{Message: "balance of 0xabc and eth price"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].Success {
		t.Fatalf("sibling failure leaked: %+v", resp.Results[0])
	}
	if resp.Results[1].Success || resp.Results[1].Error == "" {
		t.Fatalf("failing step must report error: %+v", resp.Results[1])
	}
}

func TestHandleProviderFailureFallsBack(t *testing.T) {
	provider := &stubProvider{err: errors.New("all providers down")}
	engine := New(provider, tool.DefaultRegistry())

	message := "check my balance please"
	resp, err := engine.Handle(context.Background(), Request{Message: message})
	if err != nil {
		t.Fatalf("synthesis failures must not surface: %v", err)
	}

	want := planner.Fallback(message)
	if resp.Analysis != want.Analysis {
		t.Fatalf("analysis = %q, want %q", resp.Analysis, want.Analysis)
	}
	if !reflect.DeepEqual(resp.Steps, want.Steps) {
		t.Fatalf("steps = %+v, want %+v", resp.Steps, want.Steps)
	}
	if resp.ExecutionType != planner.ExecutionParallel {
		t.Fatalf("fallback plans are parallel, got %s", resp.ExecutionType)
	}
}

func TestHandleOffTopicShortCircuits(t *testing.T) {
	provider := &stubProvider{reply: "should never be used"}
	engine := New(provider, tool.DefaultRegistry())

	resp, err := engine.Handle(context.Background(), Request{Message: "What's the weather in Paris?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsOffTopic || resp.RequiresTools {
		t.Fatalf("off-topic response malformed: %+v", resp)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not run for off-topic messages")
	}
}

func TestHandlePersistsExchange(t *testing.T) {
	provider := &stubProvider{reply: `{"analysis":"打个招呼","isOffTopic":false,"requiresTools":false,"executionType":"none","steps":[]}`}
	store := convo.NewMemoryStore()
	engine := New(provider, tool.DefaultRegistry(), WithConversationStore(store))

	if _, err := engine.Handle(context.Background(), Request{ConversationID: "c1", Message: "告诉我你能做什么 token 操作"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := store.History(context.Background(), "c1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user and assistant entries, got %d", len(history))
	}
	if history[0].Role != convo.RoleUser || history[1].Role != convo.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", history)
	}
	if history[1].Content != "打个招呼" {
		t.Fatalf("assistant entry must carry the analysis: %q", history[1].Content)
	}
}

func TestHandleWithoutInvokerOnlyPlans(t *testing.T) {
	provider := &stubProvider{reply: `{"analysis":"查询价格","isOffTopic":false,"requiresTools":true,"executionType":"sequential","steps":[{"tool":"fetch_price","parameters":{"symbol":"BTC"}}]}`}
	engine := New(provider, tool.DefaultRegistry())

	resp, err := engine.Handle(context.Background(), Request{Message: "BTC price?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.RequiresTools {
		t.Fatalf("plan should require tools")
	}
	if resp.Results != nil {
		t.Fatalf("no invoker configured, results must be nil: %+v", resp.Results)
	}
}
