package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersister(t *testing.T) {
	ctx := context.Background()

	t.Run("production layout", func(t *testing.T) {
		root := t.TempDir()
		p, err := NewFilePersister(FileOptions{
			Root:       root,
			SaltString: "prod/2026",
			Network:    "mainnet",
			Timestamp:  1_700_000_000,
		})
		require.NoError(t, err)
		assert.Equal(t,
			filepath.Join(root, "deployments", "prod-2026", "mainnet", "1700000000.json"),
			p.Path())
	})

	t.Run("test run layout is flat", func(t *testing.T) {
		root := t.TempDir()
		p, err := NewFilePersister(FileOptions{
			Root:       root,
			SaltString: "prod/2026",
			Network:    "sim",
			Timestamp:  42,
			TestRun:    true,
		})
		require.NoError(t, err)
		assert.Equal(t,
			filepath.Join(root, "deployments", "results", "prod-2026-sim-42.json"),
			p.Path())
	})

	t.Run("env var overrides the base directory", func(t *testing.T) {
		override := t.TempDir()
		t.Setenv(DeploymentsDirEnv, override)
		p, err := NewFilePersister(FileOptions{
			Root:       t.TempDir(),
			SaltString: "s",
			Network:    "sim",
			Timestamp:  1,
		})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(override, "s", "sim", "1.json"), p.Path())
	})

	t.Run("save and reload", func(t *testing.T) {
		p, err := NewFilePersister(FileOptions{
			Root:       t.TempDir(),
			SaltString: "s",
			Network:    "sim",
			Timestamp:  100,
		})
		require.NoError(t, err)

		require.NoError(t, p.Save(ctx, []byte(`{"v":1}`)))
		require.NoError(t, p.Save(ctx, []byte(`{"v":2}`)))

		got, err := p.LoadLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(got))

		// No temp file leftovers after the atomic rename.
		_, err = os.Stat(p.Path() + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("load latest picks the newest timestamp", func(t *testing.T) {
		root := t.TempDir()
		older, err := NewFilePersister(FileOptions{Root: root, SaltString: "s", Network: "sim", Timestamp: 999})
		require.NoError(t, err)
		require.NoError(t, older.Save(ctx, []byte("old")))

		newer, err := NewFilePersister(FileOptions{Root: root, SaltString: "s", Network: "sim", Timestamp: 1000})
		require.NoError(t, err)
		require.NoError(t, newer.Save(ctx, []byte("new")))

		// 999.json sorts after 1000.json lexically but not by length.
		got, err := older.LoadLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("load with no documents", func(t *testing.T) {
		p, err := NewFilePersister(FileOptions{Root: t.TempDir(), SaltString: "s", Network: "sim", Timestamp: 1})
		require.NoError(t, err)
		_, err = p.LoadLatest(ctx)
		assert.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("snapshots are numbered", func(t *testing.T) {
		p, err := NewFilePersister(FileOptions{Root: t.TempDir(), SaltString: "s", Network: "sim", Timestamp: 7})
		require.NoError(t, err)
		require.NoError(t, p.Snapshot(ctx, []byte("a")))
		require.NoError(t, p.Snapshot(ctx, []byte("b")))

		first := filepath.Join(filepath.Dir(p.Path()), "7.0001.json")
		second := filepath.Join(filepath.Dir(p.Path()), "7.0002.json")
		for _, f := range []string{first, second} {
			_, err := os.Stat(f)
			assert.NoError(t, err, f)
		}
	})

	t.Run("snapshots never shadow the main document", func(t *testing.T) {
		p, err := NewFilePersister(FileOptions{Root: t.TempDir(), SaltString: "s", Network: "sim", Timestamp: 7})
		require.NoError(t, err)
		require.NoError(t, p.Save(ctx, []byte("main")))
		// Numbered copies sort after 7.json but are not candidates.
		require.NoError(t, p.Snapshot(ctx, []byte("snap")))

		got, err := p.LoadLatest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "main", string(got))
	})
}

func TestMemoryPersister(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()

	_, err := p.LoadLatest(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)

	require.NoError(t, p.Save(ctx, []byte("one")))
	require.NoError(t, p.Save(ctx, []byte("two")))
	assert.Equal(t, 2, p.Saves())

	got, err := p.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	assert.Equal(t, "two", string(p.Latest()))
}
