package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/chain"
	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/domain/models"
	"github.com/baolabs/bao-deploy/internal/factory"
	"github.com/baolabs/bao-deploy/internal/registry"
)

// proxyContractType is recorded for every proxy shell the session deploys.
const (
	proxyContractType = "ERC1967Proxy"
	proxyContractPath = "proxy/ERC1967Proxy.sol"
	stubContractType  = "UpgradeBootstrapStub"
)

// Config assembles a session from its collaborators. The persistence and
// operator-setup strategies are injected rather than inherited, so the
// production and testing variants are different values, not subclasses.
type Config struct {
	Store       *registry.Store
	Backend     chain.Backend
	Factory     factory.API
	Artifacts   chain.Artifacts
	Persister   Persister
	Provisioner OperatorProvisioner
	Logger      *slog.Logger

	// Deployer is the harness identity: operator on the factory and
	// temporary owner of everything it deploys.
	Deployer common.Address
	// FinalOwner receives ownership of deployed proxies at finish.
	FinalOwner common.Address
	// Version is recorded in the session metadata.
	Version string
}

// Session is the deployment orchestrator: a state machine over
// NONE -> STARTED -> FINISHED that owns one typed data store, drives the
// factory through the commit-reveal flow, and records every result.
type Session struct {
	log         *slog.Logger
	store       *registry.Store
	backend     chain.Backend
	fact        factory.API
	flow        *factory.Flow
	artifacts   chain.Artifacts
	persister   Persister
	provisioner OperatorProvisioner

	deployer   common.Address
	finalOwner common.Address
	version    string

	state      domain.SessionState
	systemSalt string
	stub       common.Address
}

// New creates a session in the NONE state and wires the autosave hook.
func New(cfg Config) *Session {
	s := &Session{
		log:         cfg.Logger,
		store:       cfg.Store,
		backend:     cfg.Backend,
		fact:        cfg.Factory,
		flow:        factory.NewFlow(cfg.Factory),
		artifacts:   cfg.Artifacts,
		persister:   cfg.Persister,
		provisioner: cfg.Provisioner,
		deployer:    cfg.Deployer,
		finalOwner:  cfg.FinalOwner,
		version:     cfg.Version,
	}
	s.store.OnValueChanged(func(key string) {
		if err := s.persist(context.Background()); err != nil {
			s.log.Error("autosave failed", "key", key, "error", err)
		}
	})
	return s
}

// Store exposes the underlying registry for introspection commands.
func (s *Session) Store() *registry.Store {
	return s.store
}

// State returns the lifecycle state.
func (s *Session) State() domain.SessionState {
	return s.state
}

// Start begins a fresh session: records metadata, provisions the factory
// operator slot, and deploys the one-time upgrade-bootstrap stub.
func (s *Session) Start(ctx context.Context, network, systemSaltString string) error {
	if s.state != domain.SessionNone {
		return domain.ErrAlreadyInitialized
	}
	now, err := s.backend.Timestamp(ctx)
	if err != nil {
		return err
	}
	block, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return err
	}
	s.systemSalt = systemSaltString
	s.store.SetMetadata(models.SessionMetadata{
		Deployer:       s.deployer,
		Owner:          s.finalOwner,
		Network:        network,
		Version:        s.version,
		SaltString:     systemSaltString,
		StartTimestamp: now,
		StartBlock:     block,
	})
	if err := s.prepare(ctx); err != nil {
		return err
	}
	s.state = domain.SessionStarted
	s.log.Info("session started", "network", network, "saltString", systemSaltString)
	return s.persist(ctx)
}

// Resume reloads a persisted session so deployment steps can continue.
// The stub is redeployed fresh; it is a per-run throwaway.
func (s *Session) Resume(ctx context.Context, network, systemSaltString string) error {
	if s.state != domain.SessionNone {
		return domain.ErrAlreadyInitialized
	}
	doc, err := s.persister.LoadLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load deployment document: %w", err)
	}
	if err := registry.Decode(s.store, doc); err != nil {
		return err
	}
	md := s.store.Metadata()
	if md.SaltString != systemSaltString {
		return fmt.Errorf("salt string mismatch: document has %q, resuming with %q", md.SaltString, systemSaltString)
	}
	if network != "" && md.Network != network {
		return fmt.Errorf("network mismatch: document has %q, resuming on %q", md.Network, network)
	}
	s.systemSalt = systemSaltString
	if err := s.prepare(ctx); err != nil {
		return err
	}
	s.state = domain.SessionStarted
	s.log.Info("session resumed", "network", md.Network, "saltString", systemSaltString)
	return nil
}

// prepare provisions the operator grant and deploys the bootstrap stub.
func (s *Session) prepare(ctx context.Context) error {
	if err := s.provisioner.Provision(ctx, s.fact, s.deployer); err != nil {
		return fmt.Errorf("failed to provision operator: %w", err)
	}
	stub, err := s.backend.Create(ctx, s.deployer, s.artifacts.BootstrapStub(s.deployer), nil)
	if err != nil {
		return fmt.Errorf("failed to deploy bootstrap stub: %w", err)
	}
	s.stub = stub
	s.log.Debug("bootstrap stub deployed", "address", stub.Hex())
	return nil
}

// PredictProxyAddress returns the deterministic address a proxy key will
// deploy to, before or after the actual deployment.
func (s *Session) PredictProxyAddress(proxyKey string) common.Address {
	return s.fact.PredictAddress(factory.ProxySalt(s.systemSalt, proxyKey))
}

// PredictContractAddress returns the deterministic address for a plain
// contract key.
func (s *Session) PredictContractAddress(key string) common.Address {
	return s.fact.PredictAddress(factory.ContractSalt(s.systemSalt, key))
}

// DeployProxy deploys an ERC1967 proxy at the key's deterministic address
// and upgrades it to the implementation in the same session step.
//
// The proxy is revealed pointing at the bootstrap stub, whose owner() is
// this harness. The immediate upgradeToAndCall therefore runs the
// implementation's initializer with msg.sender == harness, which is what
// lets owner-at-initialization contracts adopt the harness as temporary
// owner even though the proxy address was fixed before any implementation
// existed.
func (s *Session) DeployProxy(ctx context.Context, proxyKey, implRef string, initData []byte, value *big.Int) (common.Address, error) {
	if err := s.requireStarted(); err != nil {
		return common.Address{}, err
	}
	if s.store.Has(proxyKey + domain.AddressSuffix) {
		return common.Address{}, &domain.ContractAlreadyExistsError{Key: proxyKey}
	}
	impl, implType, implPath, err := s.resolveImplementation(implRef)
	if err != nil {
		return common.Address{}, err
	}

	req := &factory.CommitRequest{
		Operator:   s.deployer,
		SaltString: s.systemSalt,
		Key:        proxyKey,
		InitCode:   s.artifacts.ERC1967Proxy(s.stub, nil),
		Value:      value,
		Proxy:      true,
	}
	addr, err := s.flow.CommitAndReveal(ctx, req, factory.ValueModeMatch)
	if err != nil {
		return common.Address{}, err
	}
	if _, err := s.backend.Call(ctx, s.deployer, addr, chain.PackUpgradeToAndCall(impl, initData), nil); err != nil {
		return common.Address{}, fmt.Errorf("failed to upgrade fresh proxy %q: %w", proxyKey, err)
	}

	if err := s.registerEntry(ctx, proxyKey, addr, proxyContractType, proxyContractPath, domain.CategoryUUPSProxy); err != nil {
		return common.Address{}, err
	}
	proxyWrites := []struct {
		key string
		set func(string) error
	}{
		{proxyKey + ".factory", func(k string) error { return s.store.SetAddress(k, s.fact.Address()) }},
		{proxyKey + ".value", func(k string) error { return s.store.SetUint(k, orZero(value)) }},
		{proxyKey + ".saltString", func(k string) error { return s.store.SetString(k, s.systemSalt) }},
		{proxyKey + ".salt", func(k string) error { return s.store.SetString(k, req.Salt().Hex()) }},
	}
	for _, w := range proxyWrites {
		if err := w.set(w.key); err != nil {
			return common.Address{}, fmt.Errorf("failed to record %q: %w", w.key, err)
		}
	}
	if err := s.recordImplementation(ctx, proxyKey, impl, implType, implPath); err != nil {
		return common.Address{}, err
	}
	s.log.Info("proxy deployed", "key", proxyKey, "address", addr.Hex(), "implementation", impl.Hex())
	return addr, nil
}

// UpgradeProxy points an existing proxy at a new implementation. The
// four-way branch on (initData, value) mirrors the upgrade entry points:
// upgradeTo takes no value, so value without data is rejected outright.
func (s *Session) UpgradeProxy(ctx context.Context, proxyKey, implRef string, initData []byte, value *big.Int) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	if !s.store.Has(proxyKey + domain.AddressSuffix) {
		return &domain.ContractNotFoundError{Key: proxyKey}
	}
	proxyAddr, err := s.store.Get(proxyKey)
	if err != nil {
		return err
	}
	impl, implType, implPath, err := s.resolveImplementation(implRef)
	if err != nil {
		return err
	}

	hasValue := value != nil && value.Sign() > 0
	switch {
	case len(initData) == 0 && !hasValue:
		if _, err := s.backend.Call(ctx, s.deployer, proxyAddr, chain.PackUpgradeTo(impl), nil); err != nil {
			return fmt.Errorf("failed to upgrade proxy %q: %w", proxyKey, err)
		}
	case len(initData) == 0 && hasValue:
		return domain.ErrCannotSendValueToNonPayableFunction
	default:
		if _, err := s.backend.Call(ctx, s.deployer, proxyAddr, chain.PackUpgradeToAndCall(impl, initData), value); err != nil {
			return fmt.Errorf("failed to upgrade proxy %q: %w", proxyKey, err)
		}
	}

	if err := s.recordImplementation(ctx, proxyKey, impl, implType, implPath); err != nil {
		return err
	}
	s.log.Info("proxy upgraded", "key", proxyKey, "implementation", impl.Hex())
	return nil
}

// PredictableDeployContract deploys arbitrary init code to the key's
// deterministic address through commit-reveal.
func (s *Session) PredictableDeployContract(ctx context.Context, key string, initCode []byte, contractType, contractPath string, value *big.Int) (common.Address, error) {
	if err := s.requireStarted(); err != nil {
		return common.Address{}, err
	}
	if s.store.Has(key + domain.AddressSuffix) {
		return common.Address{}, &domain.ContractAlreadyExistsError{Key: key}
	}
	req := &factory.CommitRequest{
		Operator:   s.deployer,
		SaltString: s.systemSalt,
		Key:        key,
		InitCode:   initCode,
		Value:      value,
	}
	addr, err := s.flow.CommitAndReveal(ctx, req, factory.ValueModeMatch)
	if err != nil {
		return common.Address{}, err
	}
	if err := s.registerEntry(ctx, key, addr, contractType, contractPath, domain.CategoryContract); err != nil {
		return common.Address{}, err
	}
	s.log.Info("contract deployed", "key", key, "address", addr.Hex())
	return addr, nil
}

// DeployLibrary deploys a library with a plain CREATE from the harness.
func (s *Session) DeployLibrary(ctx context.Context, key string, bytecode []byte, contractType, contractPath string) (common.Address, error) {
	if err := s.requireStarted(); err != nil {
		return common.Address{}, err
	}
	if s.store.Has(key + domain.AddressSuffix) {
		return common.Address{}, &domain.LibraryAlreadyExistsError{Key: key}
	}
	addr, err := s.backend.Create(ctx, s.deployer, bytecode, nil)
	if err != nil {
		return common.Address{}, &domain.LibraryDeploymentFailedError{Key: key}
	}
	if err := s.registerEntry(ctx, key, addr, contractType, contractPath, domain.CategoryLibrary); err != nil {
		return common.Address{}, err
	}
	s.log.Info("library deployed", "key", key, "address", addr.Hex())
	return addr, nil
}

// UseExisting records an already-deployed contract under a key without
// deploying anything.
func (s *Session) UseExisting(ctx context.Context, key string, addr common.Address) error {
	return s.RegisterContract(ctx, key, addr, "", "", domain.CategoryExisting)
}

// RegisterContract records an entry with explicit metadata.
func (s *Session) RegisterContract(ctx context.Context, key string, addr common.Address, contractType, contractPath string, category domain.Category) error {
	if err := s.requireStarted(); err != nil {
		return err
	}
	if s.store.Has(key + domain.AddressSuffix) {
		return &domain.ContractAlreadyExistsError{Key: key}
	}
	return s.registerEntry(ctx, key, addr, contractType, contractPath, category)
}

// Entries projects the registry rows currently holding an address.
func (s *Session) Entries() []*models.Entry {
	var out []*models.Entry
	for _, key := range s.store.SchemaKeys() {
		spec, _ := s.store.Schema().Spec(key)
		if spec.Type != domain.TypeObject {
			continue
		}
		if !s.store.Has(key + domain.AddressSuffix) {
			continue
		}
		out = append(out, s.entry(key))
	}
	return out
}

// Finish walks every proxy-category entry, transfers ownership back to
// the configured final owner where the harness still holds it, records
// the finish point, and seals the session. Contracts without an owner()
// accessor, or already owned elsewhere, are skipped by design.
func (s *Session) Finish(ctx context.Context) (int, error) {
	switch s.state {
	case domain.SessionNone:
		return 0, domain.ErrSessionNotStarted
	case domain.SessionFinished:
		return 0, domain.ErrSessionAlreadyFinished
	}

	transferred := 0
	for _, entry := range s.Entries() {
		if !entry.IsProxy() {
			continue
		}
		ret, err := s.backend.StaticCall(ctx, entry.Address, chain.PackOwner())
		if err != nil {
			// no owner() accessor: not an error, not every contract
			// supports ownership transfer
			s.log.Debug("skipping entry without owner()", "key", entry.Key)
			continue
		}
		owner, ok := chain.UnpackAddress(ret)
		if !ok || owner != s.deployer {
			s.log.Debug("skipping entry not owned by harness", "key", entry.Key, "owner", owner.Hex())
			continue
		}
		if _, err := s.backend.Call(ctx, s.deployer, entry.Address, chain.PackTransferOwnership(s.finalOwner), nil); err != nil {
			return transferred, fmt.Errorf("failed to transfer ownership of %q: %w", entry.Key, err)
		}
		transferred++
		s.log.Info("ownership transferred", "key", entry.Key, "to", s.finalOwner.Hex())
	}

	now, err := s.backend.Timestamp(ctx)
	if err != nil {
		return transferred, err
	}
	block, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return transferred, err
	}
	md := s.store.Metadata()
	md.FinishTimestamp = now
	md.FinishBlock = block
	s.store.SetMetadata(md)
	s.state = domain.SessionFinished
	s.log.Info("session finished", "transferred", transferred)
	return transferred, s.persist(ctx)
}

func (s *Session) requireStarted() error {
	switch s.state {
	case domain.SessionStarted:
		return nil
	case domain.SessionFinished:
		return domain.ErrSessionAlreadyFinished
	default:
		return domain.ErrSessionNotStarted
	}
}

// resolveImplementation accepts either a literal address or a registry key
// whose entry supplies the address and artifact metadata.
func (s *Session) resolveImplementation(ref string) (common.Address, string, string, error) {
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), "", "", nil
	}
	if !s.store.Has(ref + domain.AddressSuffix) {
		return common.Address{}, "", "", &domain.ContractNotFoundError{Key: ref}
	}
	addr, err := s.store.Get(ref)
	if err != nil {
		return common.Address{}, "", "", err
	}
	implType, _ := s.store.GetString(ref + ".contractType")
	implPath, _ := s.store.GetString(ref + ".contractPath")
	return addr, implType, implPath, nil
}

// registerEntry writes the canonical sub-key set for a deployed entity.
func (s *Session) registerEntry(ctx context.Context, key string, addr common.Address, contractType, contractPath string, category domain.Category) error {
	block, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return err
	}
	writes := []struct {
		key string
		set func(string) error
	}{
		{key + domain.AddressSuffix, func(k string) error { return s.store.SetAddress(k, addr) }},
		{key + ".contractType", func(k string) error { return s.store.SetString(k, contractType) }},
		{key + ".contractPath", func(k string) error { return s.store.SetString(k, contractPath) }},
		{key + ".deployer", func(k string) error { return s.store.SetAddress(k, s.deployer) }},
		{key + ".blockNumber", func(k string) error { return s.store.SetUint(k, new(big.Int).SetUint64(block)) }},
		{key + ".category", func(k string) error { return s.store.SetString(k, string(category)) }},
	}
	for _, w := range writes {
		if err := w.set(w.key); err != nil {
			return fmt.Errorf("failed to record %q: %w", w.key, err)
		}
	}
	return nil
}

// recordImplementation replaces a proxy's .implementation sub-object and
// maintains the proxy back-reference list.
func (s *Session) recordImplementation(ctx context.Context, proxyKey string, impl common.Address, implType, implPath string) error {
	implKey := proxyKey + ".implementation"
	if err := s.registerEntry(ctx, implKey, impl, implType, implPath, domain.CategoryContract); err != nil {
		return err
	}
	listed := false
	if s.store.Has(implKey + ".proxies") {
		refs, err := s.store.GetStringArray(implKey + ".proxies")
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if ref == proxyKey {
				listed = true
				break
			}
		}
	}
	if !listed {
		if err := s.store.AppendStringToArray(implKey+".proxies", proxyKey); err != nil {
			return err
		}
	}
	return s.store.SetString(implKey+".ownershipModel", "ownable")
}

// entry projects one registry row.
func (s *Session) entry(key string) *models.Entry {
	e := &models.Entry{Key: key}
	e.Address, _ = s.store.Get(key)
	e.ContractType, _ = s.store.GetString(key + ".contractType")
	e.ContractPath, _ = s.store.GetString(key + ".contractPath")
	e.Deployer, _ = s.store.GetAddress(key + ".deployer")
	if n, err := s.store.GetUint(key + ".blockNumber"); err == nil {
		e.BlockNumber = n.Uint64()
	}
	if cat, err := s.store.GetString(key + ".category"); err == nil {
		e.Category = domain.Category(cat)
	}
	if f, err := s.store.GetAddress(key + ".factory"); err == nil {
		e.Factory = f
	}
	if salt, err := s.store.GetString(key + ".salt"); err == nil {
		e.Salt = common.HexToHash(salt)
	}
	e.SaltString, _ = s.store.GetString(key + ".saltString")
	if impl, err := s.store.Get(key + ".implementation"); err == nil {
		e.Implementation = impl
	}
	return e
}

// persist serializes the store and hands it to the persistence strategy.
func (s *Session) persist(ctx context.Context) error {
	doc, err := registry.Encode(s.store)
	if err != nil {
		return err
	}
	return s.persister.Save(ctx, doc)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
