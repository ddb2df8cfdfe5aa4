package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/wire"

	"github.com/baolabs/bao-deploy/internal/adapters/artifacts"
	"github.com/baolabs/bao-deploy/internal/adapters/interactive"
	"github.com/baolabs/bao-deploy/internal/adapters/persist"
	"github.com/baolabs/bao-deploy/internal/chain"
	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/factory"
	"github.com/baolabs/bao-deploy/internal/registry"
	"github.com/baolabs/bao-deploy/internal/session"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// simDeployer is the default harness identity on the sim network when no
// key is configured (the standard dev account zero).
var simDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// Identity bundles the two account roles a session runs with.
type Identity struct {
	// Deployer signs and sends everything during the session.
	Deployer common.Address
	// Owner receives ownership at finish and owns the factory.
	Owner common.Address
}

// ProvideBackend selects the chain backend for the configured network.
func ProvideBackend(ctx context.Context, cfg *config.RuntimeConfig) (chain.Backend, error) {
	if cfg.Network == nil {
		return nil, fmt.Errorf("no network selected")
	}
	if cfg.Network.IsSim() {
		return chain.NewSimBackend(cfg.Network.ChainID), nil
	}
	if cfg.DeployerKey == "" {
		return nil, fmt.Errorf("no deployer key configured (set BAO_DEPLOYER_KEY)")
	}
	return chain.DialRPC(ctx, cfg.Network.RPCURL, cfg.DeployerKey)
}

// ProvideIdentity resolves the deployer and final owner addresses.
func ProvideIdentity(cfg *config.RuntimeConfig, backend chain.Backend) (*Identity, error) {
	var deployer common.Address
	switch b := backend.(type) {
	case *chain.RPCBackend:
		deployer = b.Sender()
	default:
		if cfg.DeployerKey != "" {
			key, err := crypto.HexToECDSA(cfg.DeployerKey)
			if err != nil {
				return nil, fmt.Errorf("invalid deployer key: %w", err)
			}
			deployer = crypto.PubkeyToAddress(key.PublicKey)
		} else {
			deployer = simDeployer
		}
	}

	owner := cfg.Owner
	if owner == (common.Address{}) {
		owner = deployer
	}
	return &Identity{Deployer: deployer, Owner: owner}, nil
}

// ProvideFactory wires the factory transport: the in-process protocol
// state machine on the sim, the on-chain contract over RPC.
func ProvideFactory(ctx context.Context, cfg *config.RuntimeConfig, backend chain.Backend, id *Identity, log *slog.Logger) (factory.API, error) {
	if cfg.Network.IsSim() {
		return factory.EnsureLocal(ctx, backend, id.Owner, log)
	}
	return factory.NewRemote(backend, factory.FactoryAddress(id.Owner), id.Owner), nil
}

// ProvideSchema builds the registry schema from the configured manifest.
func ProvideSchema(cfg *config.RuntimeConfig) (*registry.Schema, error) {
	ns := cfg.BaoConfig.ForNamespace(cfg.Namespace)
	if ns.Schema == "" {
		// No manifest: metadata-only registry.
		return registry.NewSchema(), nil
	}
	manifest, err := config.LoadSchemaManifest(joinRoot(cfg.ProjectRoot, ns.Schema))
	if err != nil {
		return nil, err
	}
	return manifest.BuildSchema()
}

// ProvideStore creates the typed store over the schema.
func ProvideStore(schema *registry.Schema) *registry.Store {
	return registry.NewStore(schema)
}

// ProvideChainArtifacts selects where bootstrap bytecode comes from.
func ProvideChainArtifacts(cfg *config.RuntimeConfig, repo *artifacts.FileRepository) chain.Artifacts {
	if cfg.Network != nil && cfg.Network.IsSim() {
		return chain.SimArtifacts{}
	}
	return artifacts.NewChainArtifacts(repo)
}

// ProvidePersister creates the file persister for this run.
func ProvidePersister(cfg *config.RuntimeConfig) (session.Persister, error) {
	var network string
	if cfg.Network != nil {
		network = cfg.Network.Name
	}
	return persist.NewFilePersister(persist.FileOptions{
		Root:       cfg.ProjectRoot,
		SaltString: cfg.SaltString,
		Network:    network,
		Timestamp:  uint64(time.Now().Unix()),
		TestRun:    cfg.TestRun,
	})
}

// ProvideProvisioner grants operators with the factory owner's authority.
func ProvideProvisioner() session.OperatorProvisioner {
	return &session.OwnerProvisioner{}
}

// ProvideSession assembles the deployment session.
func ProvideSession(
	cfg *config.RuntimeConfig,
	store *registry.Store,
	backend chain.Backend,
	fact factory.API,
	arts chain.Artifacts,
	persister session.Persister,
	provisioner session.OperatorProvisioner,
	id *Identity,
	log *slog.Logger,
) *session.Session {
	return session.New(session.Config{
		Store:       store,
		Backend:     backend,
		Factory:     fact,
		Artifacts:   arts,
		Persister:   persister,
		Provisioner: provisioner,
		Logger:      log,
		Deployer:    id.Deployer,
		FinalOwner:  id.Owner,
		Version:     cfg.Version,
	})
}

func joinRoot(root, path string) string {
	if len(path) > 0 && path[0] == '/' {
		return path
	}
	return root + "/" + path
}

// ChainSet provides the backend, identity and factory.
var ChainSet = wire.NewSet(
	ProvideBackend,
	ProvideIdentity,
	ProvideFactory,
)

// RegistrySet provides the schema and typed store.
var RegistrySet = wire.NewSet(
	ProvideSchema,
	ProvideStore,
)

// ArtifactSet provides artifact loading.
var ArtifactSet = wire.NewSet(
	artifacts.NewFileRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*artifacts.FileRepository)),
	ProvideChainArtifacts,
)

// SessionSet provides persistence and the session itself.
var SessionSet = wire.NewSet(
	ProvidePersister,
	ProvideProvisioner,
	ProvideSession,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.EntrySelector), new(*interactive.SelectorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ChainSet,
	RegistrySet,
	ArtifactSet,
	SessionSet,
	InteractiveSet,
)
