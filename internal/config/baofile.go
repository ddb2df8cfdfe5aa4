package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// BaoFileName is the project configuration file at the project root.
const BaoFileName = "bao.toml"

// BaoFileConfig represents the full bao.toml configuration file
type BaoFileConfig struct {
	// Version is recorded into every deployment document's metadata.
	Version string `toml:"version,omitempty"`
	// SaltString is the default system salt for deterministic addresses.
	SaltString string `toml:"salt_string,omitempty"`
	// Owner is the final owner deployed contracts are handed to at finish.
	Owner string `toml:"owner,omitempty"`
	// Schema points at the schema manifest, relative to the project root.
	Schema string `toml:"schema,omitempty"`

	Ns map[string]NamespaceConfig `toml:"ns"`
}

// NamespaceConfig represents a [ns.<name>] section in bao.toml. Any field
// set here overrides the top-level value for that namespace.
type NamespaceConfig struct {
	Version    string `toml:"version,omitempty"`
	SaltString string `toml:"salt_string,omitempty"`
	Owner      string `toml:"owner,omitempty"`
	Schema     string `toml:"schema,omitempty"`
}

// LoadBaoFile reads bao.toml from the project root. A missing file is not
// an error; every field has a flag or env fallback.
func LoadBaoFile(projectRoot string) (*BaoFileConfig, error) {
	path := filepath.Join(projectRoot, BaoFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &BaoFileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", BaoFileName, err)
	}

	var cfg BaoFileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", BaoFileName, err)
	}
	return &cfg, nil
}

// ForNamespace returns the effective configuration for a namespace, with
// namespace values overriding the top level.
func (c *BaoFileConfig) ForNamespace(ns string) NamespaceConfig {
	eff := NamespaceConfig{
		Version:    c.Version,
		SaltString: c.SaltString,
		Owner:      c.Owner,
		Schema:     c.Schema,
	}
	override, ok := c.Ns[ns]
	if !ok {
		return eff
	}
	if override.Version != "" {
		eff.Version = override.Version
	}
	if override.SaltString != "" {
		eff.SaltString = override.SaltString
	}
	if override.Owner != "" {
		eff.Owner = override.Owner
	}
	if override.Schema != "" {
		eff.Schema = override.Schema
	}
	return eff
}
