package factory

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/chain"
	"github.com/baolabs/bao-deploy/internal/domain"
)

// API is the factory surface the deployment flow drives. Local implements
// the full protocol state machine against a backend; Remote forwards the
// same calls to an already-deployed factory contract over RPC.
type API interface {
	// Address returns the factory's own deterministic address, the anchor
	// of every CREATE3 prediction.
	Address() common.Address

	// Owner returns the factory owner.
	Owner() common.Address

	// PredictAddress returns the CREATE3 address for a salt. Pure; callable
	// by anyone; must agree with what Reveal produces for the same salt.
	PredictAddress(salt common.Hash) common.Address

	// SetOperator grants or revokes (delay == 0) a time-limited operator.
	SetOperator(ctx context.Context, caller, operator common.Address, delay uint64) error

	// IsCurrentOperator reports whether addr holds a live operator grant.
	IsCurrentOperator(ctx context.Context, addr common.Address) (bool, error)

	// Commit records a commitment hash for a pending deployment.
	Commit(ctx context.Context, caller common.Address, commitment common.Hash) error

	// Reveal executes a committed deployment. paid is the value attached to
	// the call and must equal the committed value exactly. The commitment
	// is consumed even when the value check fails, so a retry recommits.
	Reveal(ctx context.Context, caller common.Address, initCode []byte, salt common.Hash, value, paid *big.Int) (common.Address, error)

	// ClearCommitment removes a stale commitment. Owner only; commitments
	// never expire on their own.
	ClearCommitment(ctx context.Context, caller common.Address, commitment common.Hash) error

	// Deploy is the owner-only direct CREATE3 path, bypassing commit-reveal
	// for migrations and bootstrap deployments.
	Deploy(ctx context.Context, caller common.Address, initCode []byte, salt common.Hash, value *big.Int) (common.Address, error)
}

// bootstrapDeployer is the cross-chain deterministic-deployment account the
// factory itself is CREATE2-bootstrapped from, so the factory lands on the
// same address on every chain.
var bootstrapDeployer = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")

// factorySaltString seeds the factory's own CREATE2 salt.
const factorySaltString = "bao-deploy/factory/v1"

// Local is the factory protocol state machine executed in-process over a
// chain backend. State: immutable owner, owner-set operator grants with
// expiries, and pending commitments keyed by commitment hash.
type Local struct {
	backend chain.Backend
	log     *slog.Logger

	address common.Address
	owner   common.Address

	// operator address -> grant expiry (unix). Expired grants are inert
	// but stay until explicitly removed with a zero-delay call.
	operators map[common.Address]uint64

	// commitment hash -> commit timestamp. Consumed by the matching reveal.
	commitments map[common.Hash]uint64
}

// FactorySalt returns the CREATE2 salt the factory deploys under.
func FactorySalt() common.Hash {
	return saltHash(factorySaltString)
}

// FactoryAddress returns the deterministic address a factory owned by
// owner occupies on every chain.
func FactoryAddress(owner common.Address) common.Address {
	return chain.Create2Address(bootstrapDeployer, FactorySalt(), factoryCodeHash(owner))
}

// EnsureLocal deploys the factory marker account if absent and verifies it
// if present, then returns the protocol state machine bound to it. The
// verification exists to catch a different contract squatting the
// predicted address.
func EnsureLocal(ctx context.Context, backend chain.Backend, owner common.Address, log *slog.Logger) (*Local, error) {
	addr := FactoryAddress(owner)
	wantHash := factoryCodeHash(owner)

	codeHash, err := backend.CodeHashAt(ctx, addr)
	if err != nil {
		return nil, &domain.FactoryProbeFailedError{Address: addr}
	}
	if codeHash == (common.Hash{}) {
		deployed, err := backend.Create2(ctx, bootstrapDeployer, FactorySalt(), factoryInitCode(owner), new(big.Int))
		if err != nil {
			return nil, domain.ErrFactoryDeploymentFailed
		}
		if deployed != addr {
			return nil, domain.ErrFactoryDeploymentFailed
		}
		log.Info("deployed factory", "address", addr.Hex(), "owner", owner.Hex())
	} else if codeHash != wantHash {
		return nil, &domain.FactoryCodeMismatchError{Expected: wantHash, Actual: codeHash}
	} else {
		ret, err := backend.StaticCall(ctx, addr, chain.PackOwner())
		if err != nil {
			return nil, &domain.FactoryProbeFailedError{Address: addr}
		}
		actual, ok := chain.UnpackAddress(ret)
		if !ok {
			return nil, &domain.FactoryProbeFailedError{Address: addr}
		}
		if actual != owner {
			return nil, &domain.FactoryOwnerMismatchError{Expected: owner, Actual: actual}
		}
	}

	return &Local{
		backend:     backend,
		log:         log,
		address:     addr,
		owner:       owner,
		operators:   make(map[common.Address]uint64),
		commitments: make(map[common.Hash]uint64),
	}, nil
}

// Address implements API.
func (f *Local) Address() common.Address {
	return f.address
}

// Owner implements API.
func (f *Local) Owner() common.Address {
	return f.owner
}

// PredictAddress implements API.
func (f *Local) PredictAddress(salt common.Hash) common.Address {
	return chain.Create3Address(f.address, salt)
}

// SetOperator implements API. A zero delay removes the grant; otherwise
// the grant expires delay seconds from now.
func (f *Local) SetOperator(ctx context.Context, caller, operator common.Address, delay uint64) error {
	if caller != f.owner {
		return &domain.OwnerRequiredError{Caller: caller}
	}
	if delay == 0 {
		delete(f.operators, operator)
		f.log.Info("operator removed", "operator", operator.Hex())
		return nil
	}
	now, err := f.backend.Timestamp(ctx)
	if err != nil {
		return err
	}
	f.operators[operator] = now + delay
	f.log.Info("operator granted", "operator", operator.Hex(), "expiry", now+delay)
	return nil
}

// IsCurrentOperator implements API.
func (f *Local) IsCurrentOperator(ctx context.Context, addr common.Address) (bool, error) {
	expiry, ok := f.operators[addr]
	if !ok {
		return false, nil
	}
	now, err := f.backend.Timestamp(ctx)
	if err != nil {
		return false, err
	}
	return now < expiry, nil
}

// Commit implements API.
func (f *Local) Commit(ctx context.Context, caller common.Address, commitment common.Hash) error {
	if err := f.requireOperator(ctx, caller); err != nil {
		return err
	}
	if _, exists := f.commitments[commitment]; exists {
		return &domain.CommitmentAlreadyExistsError{Commitment: commitment}
	}
	now, err := f.backend.Timestamp(ctx)
	if err != nil {
		return err
	}
	f.commitments[commitment] = now
	f.log.Info("commitment recorded", "commitment", commitment.Hex(), "operator", caller.Hex())
	return nil
}

// Reveal implements API. The commitment binds operator, value, salt and
// init-code hash together, so the actual init code only becomes visible
// atomically with execution: there is no window for a front-runner to
// place different code at the predicted address.
func (f *Local) Reveal(ctx context.Context, caller common.Address, initCode []byte, salt common.Hash, value, paid *big.Int) (common.Address, error) {
	if err := f.requireOperator(ctx, caller); err != nil {
		return common.Address{}, err
	}
	if value == nil {
		value = new(big.Int)
	}
	if paid == nil {
		paid = new(big.Int)
	}
	expected := CommitmentHash(caller, value, salt, chain.Keccak(initCode))
	if _, exists := f.commitments[expected]; !exists {
		return common.Address{}, &domain.UnknownCommitmentError{Commitment: expected}
	}
	// single-use: consumed whether or not the reveal goes through, so a
	// failed reveal leaves nothing behind to clear
	delete(f.commitments, expected)
	if value.Cmp(paid) != 0 {
		return common.Address{}, &domain.ValueMismatchError{Expected: value, Actual: paid}
	}

	addr, err := f.create3(ctx, initCode, salt, value)
	if err != nil {
		return common.Address{}, err
	}
	f.log.Info("deployment revealed", "address", addr.Hex(), "salt", salt.Hex())
	return addr, nil
}

// ClearCommitment implements API.
func (f *Local) ClearCommitment(ctx context.Context, caller common.Address, commitment common.Hash) error {
	if caller != f.owner {
		return &domain.OwnerRequiredError{Caller: caller}
	}
	if _, exists := f.commitments[commitment]; !exists {
		return &domain.UnknownCommitmentError{Commitment: commitment}
	}
	delete(f.commitments, commitment)
	f.log.Info("commitment cleared", "commitment", commitment.Hex())
	return nil
}

// Deploy implements API: the owner-gated direct path. Operators must go
// through commit-reveal; only the owner may skip it.
func (f *Local) Deploy(ctx context.Context, caller common.Address, initCode []byte, salt common.Hash, value *big.Int) (common.Address, error) {
	if caller != f.owner {
		return common.Address{}, &domain.OwnerRequiredError{Caller: caller}
	}
	return f.create3(ctx, initCode, salt, value)
}

// create3 performs the two-step CREATE3: CREATE2 the fixed shim proxy at
// the salt-derived address, then let the shim CREATE the target.
func (f *Local) create3(ctx context.Context, initCode []byte, salt common.Hash, value *big.Int) (common.Address, error) {
	shim, err := f.backend.Create2(ctx, f.address, salt, chain.Create3ProxyInitCode, new(big.Int))
	if err != nil {
		return common.Address{}, err
	}
	addr, err := f.backend.Create(ctx, shim, initCode, value)
	if err != nil {
		return common.Address{}, err
	}
	if predicted := f.PredictAddress(salt); addr != predicted {
		return common.Address{}, fmt.Errorf("create3 address drift: predicted %s, deployed %s", predicted.Hex(), addr.Hex())
	}
	return addr, nil
}

func (f *Local) requireOperator(ctx context.Context, caller common.Address) error {
	if len(f.operators) == 0 {
		return domain.ErrOperatorRequired
	}
	ok, err := f.IsCurrentOperator(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.UnauthorizedOperatorError{Address: caller}
	}
	return nil
}

// factoryInitCode is the factory's marker init code, parameterized by
// owner so ownership probes answer correctly.
func factoryInitCode(owner common.Address) []byte {
	return chain.SimOwnableInitCode(owner)
}

func factoryCodeHash(owner common.Address) common.Hash {
	return chain.Keccak(factoryInitCode(owner))
}

func saltHash(s string) common.Hash {
	return chain.Keccak([]byte(s))
}
