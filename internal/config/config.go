// Package config provides configuration for the policy/Taproot compiler.
// Callers load a CompilerConfig once and thread it through as a plain
// argument; there is no global mutable config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/klingon-exchange/taprootpolicy/internal/chain"
)

// =============================================================================
// Network selection
// =============================================================================

// CompilerConfig controls the network a compiled descriptor's address is
// derived for, and which compile-time safety gates are hard errors. The
// extractor's and Huffman tree builder's tie-breaks are fixed in code and
// not configurable here.
type CompilerConfig struct {
	// Network selects which chain.Params the compiler derives addresses
	// against ("mainnet" or "testnet").
	Network chain.Network `yaml:"network"`

	// Safety controls which of the C8 preconditions (top-level safety,
	// non-malleability) are enforced as hard errors versus logged warnings.
	// Production use should always leave both enabled.
	Safety SafetyConfig `yaml:"safety"`
}

// SafetyConfig toggles the compile-time safety gates described in §4.7.
type SafetyConfig struct {
	RequireSafe         bool `yaml:"require_safe"`
	RequireNonMalleable bool `yaml:"require_non_malleable"`
}

// Default returns the configuration used when no file is supplied: mainnet,
// both safety gates enforced.
func Default() *CompilerConfig {
	return &CompilerConfig{
		Network: chain.Mainnet,
		Safety: SafetyConfig{
			RequireSafe:         true,
			RequireNonMalleable: true,
		},
	}
}

// Load reads a CompilerConfig from a YAML file at path.
func Load(path string) (*CompilerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ChainParams resolves the chain.Params for this config's selected network.
func (c *CompilerConfig) ChainParams() (*chain.Params, bool) {
	return chain.Get(c.Network)
}
