package tool

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteInvokerGetSubstitutesPath(t *testing.T) {
	var captured struct {
		Path  string
		Query string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"balance": "42"})
	}))
	defer srv.Close()

	registry, err := NewRegistry(Descriptor{
		Name:     "get_balance",
		Endpoint: "/balance/{address}",
		Method:   http.MethodGet,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoker, err := NewRemoteInvoker(srv.URL, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoker.httpClient = srv.Client()

	result, err := invoker.Invoke(context.Background(), "get_balance", map[string]any{
		"address": "0xabc",
		"unit":    "wei",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Path != "/balance/0xabc" {
		t.Fatalf("path substitution failed: %q", captured.Path)
	}
	if captured.Query != "unit=wei" {
		t.Fatalf("remaining params must become query string: %q", captured.Query)
	}
	fields, ok := result.(map[string]any)
	if !ok || fields["balance"] != "42" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestRemoteInvokerPostSendsJSONBody(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"tx_hash": "0xdead"})
	}))
	defer srv.Close()

	registry, err := NewRegistry(Descriptor{
		Name:     "transfer",
		Endpoint: "/transfer",
		Method:   http.MethodPost,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoker, err := NewRemoteInvoker(srv.URL, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoker.httpClient = srv.Client()

	if _, err := invoker.Invoke(context.Background(), "transfer", map[string]any{
		"to_address": "0xabc",
		"amount":     "1.5",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured["to_address"] != "0xabc" || captured["amount"] != "1.5" {
		t.Fatalf("unexpected body: %v", captured)
	}
}

func TestRemoteInvokerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	registry, _ := NewRegistry(Descriptor{Name: "transfer", Endpoint: "/transfer"})
	invoker, err := NewRemoteInvoker(srv.URL, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoker.httpClient = srv.Client()

	if _, err := invoker.Invoke(context.Background(), "transfer", nil); err == nil {
		t.Fatalf("expected error on 5xx status")
	}
}

func TestRemoteInvokerUnknownAndUnsupported(t *testing.T) {
	registry, _ := NewRegistry(
		Descriptor{Name: "transfer", Endpoint: "/transfer"},
		Descriptor{Name: "local_only"},
	)
	invoker, err := NewRemoteInvoker("http://127.0.0.1:0", registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := invoker.Invoke(context.Background(), "missing", nil); !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected unknown tool error, got %v", err)
	}
	if _, err := invoker.Invoke(context.Background(), "local_only", nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestRemoteInvokerPlainTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	registry, _ := NewRegistry(Descriptor{Name: "ping", Endpoint: "/ping", Method: http.MethodGet})
	invoker, err := NewRemoteInvoker(srv.URL, registry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invoker.httpClient = srv.Client()

	result, err := invoker.Invoke(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "pong" {
		t.Fatalf("unexpected result: %v", result)
	}
}
