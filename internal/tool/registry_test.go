package tool

import (
	"context"
	"errors"
	"testing"
)

type invokerFunc func(name string) (any, error)

func (f invokerFunc) Invoke(_ context.Context, name string, _ map[string]any) (any, error) {
	return f(name)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		Descriptor{Name: "get_balance"},
		Descriptor{Name: "get_balance"},
	)
	if err == nil {
		t.Fatalf("duplicate tool name must be rejected")
	}
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	if _, err := NewRegistry(Descriptor{Name: "  "}); err == nil {
		t.Fatalf("blank tool name must be rejected")
	}
}

func TestRegistryLookupAndOrder(t *testing.T) {
	registry, err := NewRegistry(
		Descriptor{Name: "transfer"},
		Descriptor{Name: "get_balance"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !registry.Contains("transfer") || registry.Contains("unknown") {
		t.Fatalf("contains misbehaves")
	}
	desc, ok := registry.Lookup("get_balance")
	if !ok || desc.Name != "get_balance" {
		t.Fatalf("lookup failed: %+v", desc)
	}
	names := registry.Names()
	if len(names) != 2 || names[0] != "transfer" || names[1] != "get_balance" {
		t.Fatalf("registration order lost: %v", names)
	}
}

func TestDefaultRegistryContainsBuiltins(t *testing.T) {
	registry := DefaultRegistry()
	for _, name := range []string{
		"transfer", "get_balance", "deploy_erc20", "deploy_erc721",
		"fetch_price", "get_token_info", "get_token_balance", "mint_nft", "get_nft_info",
	} {
		if !registry.Contains(name) {
			t.Errorf("builtin tool %s missing", name)
		}
	}
	if registry.Len() != 9 {
		t.Fatalf("expected 9 builtin tools, got %d", registry.Len())
	}
}

func TestMergeDescriptorsKeepsBasePriority(t *testing.T) {
	base := []Descriptor{{Name: "transfer", Description: "builtin"}}
	extra := []Descriptor{
		{Name: "transfer", Description: "override"},
		{Name: "custom_tool", Description: "added"},
	}

	merged := MergeDescriptors(base, extra)
	if len(merged) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(merged))
	}
	if merged[0].Description != "builtin" {
		t.Fatalf("base descriptor must win on conflict: %+v", merged[0])
	}
	if merged[1].Name != "custom_tool" {
		t.Fatalf("extra descriptor missing: %+v", merged)
	}
}

func TestChainFallsThroughOnUnsupported(t *testing.T) {
	first := invokerFunc(func(name string) (any, error) {
		if name == "get_balance" {
			return "from-first", nil
		}
		return nil, ErrUnsupported
	})
	second := invokerFunc(func(name string) (any, error) {
		return "from-second", nil
	})

	chain := Chain{first, second}
	result, err := chain.Invoke(context.Background(), "fetch_price", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "from-second" {
		t.Fatalf("chain did not fall through: %v", result)
	}

	result, err = chain.Invoke(context.Background(), "get_balance", nil)
	if err != nil || result != "from-first" {
		t.Fatalf("first invoker should win: %v %v", result, err)
	}
}

func TestChainAllUnsupported(t *testing.T) {
	chain := Chain{invokerFunc(func(string) (any, error) { return nil, ErrUnsupported })}
	if _, err := chain.Invoke(context.Background(), "transfer", nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}
