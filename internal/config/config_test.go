package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baolabs/bao-deploy/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadBaoFile(t *testing.T) {
	t.Run("missing file yields an empty config", func(t *testing.T) {
		cfg, err := LoadBaoFile(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, cfg.Version)
		assert.Empty(t, cfg.Ns)
	})

	t.Run("parses namespaced sections", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, BaoFileName, `
version = "v1"
salt_string = "prod/2026"
owner = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

[ns.staging]
salt_string = "staging/2026"
`)
		cfg, err := LoadBaoFile(root)
		require.NoError(t, err)
		assert.Equal(t, "v1", cfg.Version)
		assert.Equal(t, "prod/2026", cfg.SaltString)
		require.Contains(t, cfg.Ns, "staging")
		assert.Equal(t, "staging/2026", cfg.Ns["staging"].SaltString)
	})

	t.Run("malformed toml", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, BaoFileName, "version = [unclosed")
		_, err := LoadBaoFile(root)
		assert.Error(t, err)
	})
}

func TestForNamespace(t *testing.T) {
	cfg := &BaoFileConfig{
		Version:    "v1",
		SaltString: "prod/2026",
		Owner:      "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Ns: map[string]NamespaceConfig{
			"staging": {SaltString: "staging/2026"},
		},
	}

	t.Run("override wins, rest inherits", func(t *testing.T) {
		eff := cfg.ForNamespace("staging")
		assert.Equal(t, "staging/2026", eff.SaltString)
		assert.Equal(t, "v1", eff.Version)
		assert.Equal(t, cfg.Owner, eff.Owner)
	})

	t.Run("unknown namespace falls back to the top level", func(t *testing.T) {
		eff := cfg.ForNamespace("nonexistent")
		assert.Equal(t, "prod/2026", eff.SaltString)
	})
}

func TestNetworkResolver(t *testing.T) {
	t.Run("sim is built in", func(t *testing.T) {
		r, err := NewNetworkResolver(t.TempDir())
		require.NoError(t, err)
		n, err := r.Resolve(SimNetworkName)
		require.NoError(t, err)
		assert.True(t, n.IsSim())
		assert.Equal(t, uint64(31337), n.ChainID)
	})

	t.Run("resolves configured networks", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, NetworksFileName, `
networks:
  sepolia:
    chainId: 11155111
    rpc: https://rpc.sepolia.example
`)
		r, err := NewNetworkResolver(root)
		require.NoError(t, err)
		n, err := r.Resolve("sepolia")
		require.NoError(t, err)
		assert.Equal(t, "sepolia", n.Name)
		assert.Equal(t, uint64(11155111), n.ChainID)
		assert.False(t, n.IsSim())

		assert.Equal(t, []string{"sepolia", "sim"}, r.Names())
	})

	t.Run("unknown network", func(t *testing.T) {
		r, err := NewNetworkResolver(t.TempDir())
		require.NoError(t, err)
		_, err = r.Resolve("mainnet")
		assert.Error(t, err)
	})

	t.Run("network without rpc url", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, NetworksFileName, `
networks:
  broken:
    chainId: 1
`)
		r, err := NewNetworkResolver(root)
		require.NoError(t, err)
		_, err = r.Resolve("broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rpc url")
	})
}

func TestSchemaManifest(t *testing.T) {
	t.Run("builds the declared schema", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
proxies:
  - contracts.vault
contracts:
  - contracts.token
keys:
  - key: treasury
    type: address
  - key: supply
    type: uint
    decimals: 18
  - key: signers
    type: address[]
`), 0644))

		m, err := LoadSchemaManifest(path)
		require.NoError(t, err)
		schema, err := m.BuildSchema()
		require.NoError(t, err)

		assert.True(t, schema.Has("contracts.vault.implementation.proxies"))
		assert.True(t, schema.Has("contracts.token.address"))
		assert.True(t, schema.Has("treasury"))
		assert.True(t, schema.Has("signers"))

		spec, ok := schema.Spec("supply")
		require.True(t, ok)
		assert.Equal(t, domain.TypeUint, spec.Type)
		assert.Equal(t, 18, spec.Decimals)
	})

	t.Run("unknown type", func(t *testing.T) {
		m := &SchemaManifest{Keys: []ManifestKey{{Key: "x", Type: "float"}}}
		_, err := m.BuildSchema()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type")
	})

	t.Run("missing manifest file", func(t *testing.T) {
		_, err := LoadSchemaManifest(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, BaoFileName, "")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(nested))

	found, err := FindProjectRoot()
	require.NoError(t, err)
	// Compare resolved paths; the temp dir may sit behind a symlink.
	wantInfo, err := os.Stat(root)
	require.NoError(t, err)
	gotInfo, err := os.Stat(found)
	require.NoError(t, err)
	assert.True(t, os.SameFile(wantInfo, gotInfo))
}
