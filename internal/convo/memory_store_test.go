package convo

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryStoreAppendAndHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := Message{Role: RoleUser, Content: fmt.Sprintf("message-%d", i)}
		if err := store.Append(ctx, "convo-1", msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	history, err := store.History(ctx, "convo-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	for i, want := range []string{"message-2", "message-3", "message-4"} {
		if history[i].Content != want {
			t.Fatalf("history[%d] = %q, want %q", i, history[i].Content, want)
		}
	}
}

func TestMemoryStoreHistoryNoLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := store.Append(ctx, "convo-1", Message{Role: RoleAssistant, Content: "reply"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	history, err := store.History(ctx, "convo-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("limit 0 must return everything, got %d", len(history))
	}
}

func TestMemoryStoreValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Append(ctx, "", Message{Role: RoleUser, Content: "hi"}); err == nil {
		t.Fatalf("empty conversation id must be rejected")
	}
	if err := store.Append(ctx, "convo-1", Message{Role: "bot", Content: "hi"}); err == nil {
		t.Fatalf("invalid role must be rejected")
	}
}

func TestMemoryStoreIsolatesConversations(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Append(ctx, "a", Message{Role: RoleUser, Content: "for a"})
	_ = store.Append(ctx, "b", Message{Role: RoleUser, Content: "for b"})

	history, err := store.History(ctx, "a", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 || history[0].Content != "for a" {
		t.Fatalf("conversations leak: %+v", history)
	}
}
