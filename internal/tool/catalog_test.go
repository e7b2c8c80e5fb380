package tool

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalogParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	content := `tools:
  - name: swap_tokens
    description: 在去中心化交易所兑换代币
    endpoint: /swap
    method: POST
    parameters:
      - name: from_token
        type: string
        description: 源代币符号
        required: true
      - name: to_token
        type: string
        required: true
    examples:
      - "把 1 ETH 换成 USDC"
  - name: gas_estimate
    description: 估算交易手续费
    endpoint: /gas
    method: GET
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	descriptors, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descriptors))
	}
	swap := descriptors[0]
	if swap.Name != "swap_tokens" || swap.Endpoint != "/swap" || swap.Method != "POST" {
		t.Fatalf("unexpected descriptor: %+v", swap)
	}
	if len(swap.Parameters) != 2 || !swap.Parameters[0].Required || swap.Parameters[0].Name != "from_token" {
		t.Fatalf("parameters lost: %+v", swap.Parameters)
	}
	if len(swap.Examples) != 1 {
		t.Fatalf("examples lost: %+v", swap.Examples)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file must fail")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("tools: ["), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatalf("malformed yaml must fail")
	}
}
