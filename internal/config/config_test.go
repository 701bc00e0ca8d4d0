package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klingon-exchange/taprootpolicy/internal/chain"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Network != chain.Mainnet {
		t.Errorf("Network = %s, want mainnet", cfg.Network)
	}
	if !cfg.Safety.RequireSafe || !cfg.Safety.RequireNonMalleable {
		t.Error("default config should enforce both safety gates")
	}
}

func TestChainParams(t *testing.T) {
	cfg := Default()
	params, ok := cfg.ChainParams()
	if !ok {
		t.Fatal("expected mainnet params to resolve")
	}
	if params.Bech32HRP != "bc" {
		t.Errorf("Bech32HRP = %s, want bc", params.Bech32HRP)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compiler.yaml")
	contents := "network: testnet\nsafety:\n  require_safe: true\n  require_non_malleable: false\n"
	if err := writeFile(path, contents); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Network != chain.Testnet {
		t.Errorf("Network = %s, want testnet", cfg.Network)
	}
	if cfg.Safety.RequireNonMalleable {
		t.Error("RequireNonMalleable should be false")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/compiler.yaml"); err == nil {
		t.Error("expected error loading missing file")
	}
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
