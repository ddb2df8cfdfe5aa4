package session

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baolabs/bao-deploy/internal/adapters/persist"
	"github.com/baolabs/bao-deploy/internal/chain"
	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/factory"
	"github.com/baolabs/bao-deploy/internal/registry"
)

var (
	testDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testOwner    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	testSalt = "prod/2026"
)

type harness struct {
	sim       *chain.SimBackend
	fact      *factory.Local
	persister *persist.MemoryPersister
	sess      *Session
}

func testSchema(t *testing.T) *registry.Schema {
	t.Helper()
	schema := registry.NewSchema()
	require.NoError(t, schema.AddProxy("contracts.vault"))
	require.NoError(t, schema.AddContract("contracts.token"))
	require.NoError(t, schema.AddContract("contracts.mathlib"))
	require.NoError(t, schema.AddContract("contracts.legacy"))
	return schema
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sim := chain.NewSimBackend(31337)
	fact, err := factory.EnsureLocal(context.Background(), sim, testDeployer, log)
	require.NoError(t, err)
	persister := persist.NewMemoryPersister()
	sess := New(Config{
		Store:       registry.NewStore(testSchema(t)),
		Backend:     sim,
		Factory:     fact,
		Artifacts:   chain.SimArtifacts{},
		Persister:   persister,
		Provisioner: &OwnerProvisioner{},
		Logger:      log,
		Deployer:    testDeployer,
		FinalOwner:  testOwner,
		Version:     "v1",
	})
	return &harness{sim: sim, fact: fact, persister: persister, sess: sess}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.sess.Start(context.Background(), "sim", testSalt))
}

func (h *harness) ownerOf(t *testing.T, addr common.Address) common.Address {
	t.Helper()
	ret, err := h.sim.StaticCall(context.Background(), addr, chain.PackOwner())
	require.NoError(t, err)
	owner, ok := chain.UnpackAddress(ret)
	require.True(t, ok)
	return owner
}

func TestSessionStart(t *testing.T) {
	ctx := context.Background()

	t.Run("records metadata and persists", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)

		assert.Equal(t, domain.SessionStarted, h.sess.State())
		md := h.sess.Store().Metadata()
		assert.Equal(t, testDeployer, md.Deployer)
		assert.Equal(t, testOwner, md.Owner)
		assert.Equal(t, "sim", md.Network)
		assert.Equal(t, testSalt, md.SaltString)
		assert.Equal(t, uint64(1_700_000_000), md.StartTimestamp)
		assert.NotZero(t, md.StartBlock)
		assert.Positive(t, h.persister.Saves())
	})

	t.Run("double start", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		assert.ErrorIs(t, h.sess.Start(ctx, "sim", testSalt), domain.ErrAlreadyInitialized)
	})

	t.Run("provisions the operator grant", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		ok, err := h.fact.IsCurrentOperator(ctx, testDeployer)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("deploys before start are rejected", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.sess.DeployProxy(ctx, "contracts.vault", testOwner.Hex(), []byte{1}, nil)
		assert.ErrorIs(t, err, domain.ErrSessionNotStarted)
	})
}

func TestDeployProxy(t *testing.T) {
	ctx := context.Background()
	implRef := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")

	t.Run("lands at the predicted address", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)

		predicted := h.sess.PredictProxyAddress("contracts.vault")
		want := chain.Create3Address(h.fact.Address(),
			chain.Keccak([]byte(testSalt+"/contracts.vault/UUPS/proxy")))
		assert.Equal(t, want, predicted)

		addr, err := h.sess.DeployProxy(ctx, "contracts.vault", implRef.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)
		assert.Equal(t, predicted, addr)
	})

	t.Run("initializer leaves the harness as owner", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		addr, err := h.sess.DeployProxy(ctx, "contracts.vault", implRef.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)
		assert.Equal(t, testDeployer, h.ownerOf(t, addr))
	})

	t.Run("records the full entry", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		addr, err := h.sess.DeployProxy(ctx, "contracts.vault", implRef.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)

		store := h.sess.Store()
		got, err := store.Get("contracts.vault")
		require.NoError(t, err)
		assert.Equal(t, addr, got)

		factoryAddr, err := store.GetAddress("contracts.vault.factory")
		require.NoError(t, err)
		assert.Equal(t, h.fact.Address(), factoryAddr)

		saltStr, err := store.GetString("contracts.vault.saltString")
		require.NoError(t, err)
		assert.Equal(t, testSalt, saltStr)

		impl, err := store.Get("contracts.vault.implementation")
		require.NoError(t, err)
		assert.Equal(t, implRef, impl)

		refs, err := store.GetStringArray("contracts.vault.implementation.proxies")
		require.NoError(t, err)
		assert.Equal(t, []string{"contracts.vault"}, refs)

		cat, err := store.GetString("contracts.vault.category")
		require.NoError(t, err)
		assert.Equal(t, string(domain.CategoryUUPSProxy), cat)
	})

	t.Run("duplicate key", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.DeployProxy(ctx, "contracts.vault", implRef.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)
		_, err = h.sess.DeployProxy(ctx, "contracts.vault", implRef.Hex(), []byte{0x01}, nil)
		var derr *domain.ContractAlreadyExistsError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("implementation by registry key", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		require.NoError(t, h.sess.RegisterContract(ctx, "contracts.token", implRef, "Token", "src/Token.sol", domain.CategoryContract))

		_, err := h.sess.DeployProxy(ctx, "contracts.vault", "contracts.token", []byte{0x01}, nil)
		require.NoError(t, err)

		implType, err := h.sess.Store().GetString("contracts.vault.implementation.contractType")
		require.NoError(t, err)
		assert.Equal(t, "Token", implType)
	})

	t.Run("unknown implementation key", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.DeployProxy(ctx, "contracts.vault", "contracts.token", []byte{0x01}, nil)
		var nerr *domain.ContractNotFoundError
		assert.ErrorAs(t, err, &nerr)
	})
}

func TestUpgradeProxy(t *testing.T) {
	ctx := context.Background()
	firstImpl := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	nextImpl := common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")

	deployed := func(t *testing.T) *harness {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.DeployProxy(ctx, "contracts.vault", firstImpl.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)
		return h
	}

	t.Run("plain upgrade", func(t *testing.T) {
		h := deployed(t)
		require.NoError(t, h.sess.UpgradeProxy(ctx, "contracts.vault", nextImpl.Hex(), nil, nil))
		impl, err := h.sess.Store().Get("contracts.vault.implementation")
		require.NoError(t, err)
		assert.Equal(t, nextImpl, impl)
	})

	t.Run("upgrade with initializer and value", func(t *testing.T) {
		h := deployed(t)
		err := h.sess.UpgradeProxy(ctx, "contracts.vault", nextImpl.Hex(), []byte{0x02}, big.NewInt(100))
		require.NoError(t, err)
	})

	t.Run("value without data is rejected", func(t *testing.T) {
		h := deployed(t)
		err := h.sess.UpgradeProxy(ctx, "contracts.vault", nextImpl.Hex(), nil, big.NewInt(100))
		assert.ErrorIs(t, err, domain.ErrCannotSendValueToNonPayableFunction)
	})

	t.Run("unknown proxy key", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		err := h.sess.UpgradeProxy(ctx, "contracts.vault", nextImpl.Hex(), nil, nil)
		var nerr *domain.ContractNotFoundError
		assert.ErrorAs(t, err, &nerr)
	})

	t.Run("re-upgrade does not duplicate the back-reference", func(t *testing.T) {
		h := deployed(t)
		require.NoError(t, h.sess.UpgradeProxy(ctx, "contracts.vault", nextImpl.Hex(), nil, nil))
		require.NoError(t, h.sess.UpgradeProxy(ctx, "contracts.vault", firstImpl.Hex(), nil, nil))
		refs, err := h.sess.Store().GetStringArray("contracts.vault.implementation.proxies")
		require.NoError(t, err)
		assert.Equal(t, []string{"contracts.vault"}, refs)
	})
}

func TestPredictableDeployContract(t *testing.T) {
	ctx := context.Background()

	t.Run("lands at the predicted address", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)

		predicted := h.sess.PredictContractAddress("contracts.token")
		addr, err := h.sess.PredictableDeployContract(ctx, "contracts.token",
			chain.SimOwnableInitCode(testDeployer), "Token", "src/Token.sol", nil)
		require.NoError(t, err)
		assert.Equal(t, predicted, addr)

		cat, err := h.sess.Store().GetString("contracts.token.category")
		require.NoError(t, err)
		assert.Equal(t, string(domain.CategoryContract), cat)
	})

	t.Run("duplicate key", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.PredictableDeployContract(ctx, "contracts.token",
			chain.SimOwnableInitCode(testDeployer), "Token", "src/Token.sol", nil)
		require.NoError(t, err)
		_, err = h.sess.PredictableDeployContract(ctx, "contracts.token",
			chain.SimOwnableInitCode(testDeployer), "Token", "src/Token.sol", nil)
		var derr *domain.ContractAlreadyExistsError
		assert.ErrorAs(t, err, &derr)
	})
}

func TestDeployLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("deploys with a plain create", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		addr, err := h.sess.DeployLibrary(ctx, "contracts.mathlib", []byte{0x60, 0x60}, "MathLib", "src/MathLib.sol")
		require.NoError(t, err)
		assert.NotEqual(t, common.Address{}, addr)

		cat, err := h.sess.Store().GetString("contracts.mathlib.category")
		require.NoError(t, err)
		assert.Equal(t, string(domain.CategoryLibrary), cat)
	})

	t.Run("duplicate key", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.DeployLibrary(ctx, "contracts.mathlib", []byte{0x60}, "MathLib", "src/MathLib.sol")
		require.NoError(t, err)
		_, err = h.sess.DeployLibrary(ctx, "contracts.mathlib", []byte{0x60}, "MathLib", "src/MathLib.sol")
		var derr *domain.LibraryAlreadyExistsError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("empty bytecode fails", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.DeployLibrary(ctx, "contracts.mathlib", nil, "MathLib", "src/MathLib.sol")
		var ferr *domain.LibraryDeploymentFailedError
		assert.ErrorAs(t, err, &ferr)
	})
}

func TestUseExisting(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.start(t)

	known := common.HexToAddress("0x5555555555555555555555555555555555555555")
	require.NoError(t, h.sess.UseExisting(ctx, "contracts.legacy", known))

	got, err := h.sess.Store().Get("contracts.legacy")
	require.NoError(t, err)
	assert.Equal(t, known, got)

	cat, err := h.sess.Store().GetString("contracts.legacy.category")
	require.NoError(t, err)
	assert.Equal(t, string(domain.CategoryExisting), cat)
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.start(t)

	impl := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	_, err := h.sess.DeployProxy(ctx, "contracts.vault", impl.Hex(), []byte{0x01}, nil)
	require.NoError(t, err)
	require.NoError(t, h.sess.UseExisting(ctx, "contracts.legacy", impl))

	entries := h.sess.Entries()
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	// Implementation sub-objects project as their own rows.
	assert.Contains(t, keys, "contracts.vault")
	assert.Contains(t, keys, "contracts.vault.implementation")
	assert.Contains(t, keys, "contracts.legacy")
	assert.NotContains(t, keys, "contracts.token")

	for _, e := range entries {
		if e.Key != "contracts.vault" {
			continue
		}
		assert.True(t, e.IsProxy())
		assert.Equal(t, impl, e.Implementation)
		assert.Equal(t, h.fact.Address(), e.Factory)
	}
}

func TestFinish(t *testing.T) {
	ctx := context.Background()
	impl := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")

	t.Run("transfers proxy ownership to the final owner", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		addr, err := h.sess.DeployProxy(ctx, "contracts.vault", impl.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)
		require.Equal(t, testDeployer, h.ownerOf(t, addr))

		transferred, err := h.sess.Finish(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, transferred)
		assert.Equal(t, testOwner, h.ownerOf(t, addr))
		assert.Equal(t, domain.SessionFinished, h.sess.State())

		md := h.sess.Store().Metadata()
		assert.NotZero(t, md.FinishTimestamp)
		assert.NotZero(t, md.FinishBlock)
	})

	t.Run("skips entries the harness does not own", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		addr, err := h.sess.DeployProxy(ctx, "contracts.vault", impl.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)
		// Hand ownership away before finish.
		_, err = h.sim.Call(ctx, testDeployer, addr, chain.PackTransferOwnership(impl), nil)
		require.NoError(t, err)

		transferred, err := h.sess.Finish(ctx)
		require.NoError(t, err)
		assert.Zero(t, transferred)
	})

	t.Run("requires a started session", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.sess.Finish(ctx)
		assert.ErrorIs(t, err, domain.ErrSessionNotStarted)
	})

	t.Run("cannot finish twice", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.Finish(ctx)
		require.NoError(t, err)
		_, err = h.sess.Finish(ctx)
		assert.ErrorIs(t, err, domain.ErrSessionAlreadyFinished)
	})

	t.Run("deploys after finish are rejected", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		_, err := h.sess.Finish(ctx)
		require.NoError(t, err)
		_, err = h.sess.DeployProxy(ctx, "contracts.vault", impl.Hex(), []byte{0x01}, nil)
		assert.ErrorIs(t, err, domain.ErrSessionAlreadyFinished)
	})
}

func TestAutosave(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.start(t)

	before := h.persister.Saves()
	_, err := h.sess.PredictableDeployContract(ctx, "contracts.token",
		chain.SimOwnableInitCode(testDeployer), "Token", "src/Token.sol", nil)
	require.NoError(t, err)
	assert.Greater(t, h.persister.Saves(), before)
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	impl := common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")

	t.Run("continues from the persisted document", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		addr, err := h.sess.DeployProxy(ctx, "contracts.vault", impl.Hex(), []byte{0x01}, nil)
		require.NoError(t, err)

		// A second session over the same persister, as a fresh process
		// invocation would build it.
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		resumed := New(Config{
			Store:       registry.NewStore(testSchema(t)),
			Backend:     h.sim,
			Factory:     h.fact,
			Artifacts:   chain.SimArtifacts{},
			Persister:   h.persister,
			Provisioner: &OwnerProvisioner{},
			Logger:      log,
			Deployer:    testDeployer,
			FinalOwner:  testOwner,
			Version:     "v1",
		})
		require.NoError(t, resumed.Resume(ctx, "sim", testSalt))
		assert.Equal(t, domain.SessionStarted, resumed.State())

		got, err := resumed.Store().Get("contracts.vault")
		require.NoError(t, err)
		assert.Equal(t, addr, got)

		// The resumed session can keep deploying.
		_, err = resumed.PredictableDeployContract(ctx, "contracts.token",
			chain.SimOwnableInitCode(testDeployer), "Token", "src/Token.sol", nil)
		require.NoError(t, err)
	})

	t.Run("salt mismatch", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)

		fresh := New(Config{
			Store:       registry.NewStore(testSchema(t)),
			Backend:     h.sim,
			Factory:     h.fact,
			Artifacts:   chain.SimArtifacts{},
			Persister:   h.persister,
			Provisioner: &OwnerProvisioner{},
			Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
			Deployer:    testDeployer,
			FinalOwner:  testOwner,
		})
		err := fresh.Resume(ctx, "sim", "some/other/salt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "salt string mismatch")
	})

	t.Run("network mismatch", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		fresh := New(Config{
			Store:       registry.NewStore(testSchema(t)),
			Backend:     h.sim,
			Factory:     h.fact,
			Artifacts:   chain.SimArtifacts{},
			Persister:   h.persister,
			Provisioner: &OwnerProvisioner{},
			Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
			Deployer:    testDeployer,
			FinalOwner:  testOwner,
		})
		err := fresh.Resume(ctx, "mainnet", testSalt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network mismatch")
	})

	t.Run("nothing to resume", func(t *testing.T) {
		h := newHarness(t)
		err := h.sess.Resume(ctx, "sim", testSalt)
		assert.ErrorIs(t, err, persist.ErrNoDocument)
	})
}
