package agentflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatPostsPayload(t *testing.T) {
	var captured ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ChatResponse{
			Analysis:      "查询余额",
			RequiresTools: true,
			ExecutionType: "sequential",
			Steps:         []PlanStep{{Tool: "get_balance", Parameters: map[string]any{"address": "0xabc"}}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	resp, err := client.Chat(context.Background(), ChatRequest{ConversationID: "c1", Message: "查询余额"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if captured.ConversationID != "c1" || captured.Message != "查询余额" {
		t.Fatalf("request payload mangled: %+v", captured)
	}
	if resp.Analysis != "查询余额" || len(resp.Steps) != 1 || resp.Steps[0].Tool != "get_balance" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSubmitJobReturnsAcceptedJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/jobs" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(Job{ID: "job-1", Status: "pending", MaxRetries: 3})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	job, err := client.SubmitJob(context.Background(), JobSubmission{Message: "转账"})
	if err != nil {
		t.Fatalf("submit job: %v", err)
	}
	if job.ID != "job-1" || job.Status != "pending" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestGetJobSendsQueryParameter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "job 42" {
			t.Errorf("id query parameter lost: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Job{ID: "job 42", Status: "succeeded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	job, err := client.GetJob(context.Background(), "job 42")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != "succeeded" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestToolsUnwrapsCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tools": []Tool{
				{Name: "get_balance", Description: "查询地址余额"},
				{Name: "transfer", Description: "发起转账"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	tools, err := client.Tools(context.Background())
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	if len(tools) != 2 || tools[0].Name != "get_balance" {
		t.Fatalf("unexpected catalog: %+v", tools)
	}
}

func TestAPIErrorDecodedFromEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_ARGUMENT","message":"消息不能为空"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.Chat(context.Background(), ChatRequest{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestAPIErrorPlainTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.Tools(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "gateway timeout" {
		t.Fatalf("plain text body not captured: %+v", apiErr)
	}
}
