package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/baolabs/bao-deploy/internal/registry"
)

// SchemaManifest is the YAML declaration of a project's registry schema.
// Proxies and contracts get their full sub-key sets registered; plain
// keys are declared individually with a type name.
type SchemaManifest struct {
	Proxies   []string      `yaml:"proxies"`
	Contracts []string      `yaml:"contracts"`
	Keys      []ManifestKey `yaml:"keys"`
}

// ManifestKey declares one typed registry key.
type ManifestKey struct {
	Key      string `yaml:"key"`
	Type     string `yaml:"type"`
	Decimals int    `yaml:"decimals,omitempty"`
}

// LoadSchemaManifest reads a schema manifest file.
func LoadSchemaManifest(path string) (*SchemaManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema manifest: %w", err)
	}
	var m SchemaManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse schema manifest: %w", err)
	}
	return &m, nil
}

// BuildSchema registers every manifest entry into a fresh schema.
// Registration order follows the manifest, so the rendered document
// layout is under the project's control.
func (m *SchemaManifest) BuildSchema() (*registry.Schema, error) {
	schema := registry.NewSchema()
	for _, key := range m.Proxies {
		if err := schema.AddProxy(key); err != nil {
			return nil, fmt.Errorf("proxy %q: %w", key, err)
		}
	}
	for _, key := range m.Contracts {
		if err := schema.AddContract(key); err != nil {
			return nil, fmt.Errorf("contract %q: %w", key, err)
		}
	}
	for _, k := range m.Keys {
		if err := addManifestKey(schema, k); err != nil {
			return nil, fmt.Errorf("key %q: %w", k.Key, err)
		}
	}
	return schema, nil
}

func addManifestKey(schema *registry.Schema, k ManifestKey) error {
	switch k.Type {
	case "address":
		return schema.AddAddressKey(k.Key)
	case "string":
		return schema.AddStringKey(k.Key)
	case "uint":
		return schema.AddUintKey(k.Key, k.Decimals)
	case "int":
		return schema.AddIntKey(k.Key, k.Decimals)
	case "bool":
		return schema.AddBoolKey(k.Key)
	case "address[]":
		return schema.AddAddressArrayKey(k.Key)
	case "string[]":
		return schema.AddStringArrayKey(k.Key)
	case "uint[]":
		return schema.AddUintArrayKey(k.Key, k.Decimals)
	case "bool[]":
		return schema.AddBoolArrayKey(k.Key)
	default:
		return fmt.Errorf("unknown type %q", k.Type)
	}
}
