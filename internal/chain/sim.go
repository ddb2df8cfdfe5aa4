package chain

import (
	"bytes"
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Tag prefixes for init code the simulator can interpret. The simulator
// does not run EVM bytecode; it recognizes the archetypes the harness
// deploys and models their observable behavior (ownership, ERC1967
// upgrades). Opaque blobs deploy fine but answer no calls.
var (
	simStubTag    = []byte("bao-sim/uups-stub/")
	simProxyTag   = []byte("bao-sim/erc1967/")
	simOwnableTag = []byte("bao-sim/ownable/")
)

// erc1967ImplementationSlot is the standard implementation slot constant,
// returned by proxiableUUID probes.
var erc1967ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

type simAccount struct {
	code     []byte
	codeHash common.Hash
	nonce    uint64

	hasOwner bool
	owner    common.Address
	isProxy  bool
	isStub   bool
	impl     common.Address
}

// SimBackend is an in-memory chain model: deterministic addresses, account
// nonces, and call behavior for the archetypes the harness cares about.
// The clock and block height only move when told to (or on writes), which
// is what the operator-expiry tests lean on.
type SimBackend struct {
	mu        sync.Mutex
	chainID   uint64
	block     uint64
	timestamp uint64
	accounts  map[common.Address]*simAccount
}

// NewSimBackend creates a simulator for the given chain ID.
func NewSimBackend(chainID uint64) *SimBackend {
	return &SimBackend{
		chainID:   chainID,
		block:     1,
		timestamp: 1_700_000_000,
		accounts:  make(map[common.Address]*simAccount),
	}
}

// AdvanceTime moves the clock forward.
func (b *SimBackend) AdvanceTime(seconds uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timestamp += seconds
}

// ChainID implements Backend.
func (b *SimBackend) ChainID(ctx context.Context) (uint64, error) {
	return b.chainID, nil
}

// BlockNumber implements Backend.
func (b *SimBackend) BlockNumber(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.block, nil
}

// Timestamp implements Backend.
func (b *SimBackend) Timestamp(ctx context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timestamp, nil
}

// CodeHashAt implements Backend. Empty accounts report the zero hash.
func (b *SimBackend) CodeHashAt(ctx context.Context, addr common.Address) (common.Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[addr]
	if !ok || len(acct.code) == 0 {
		return common.Hash{}, nil
	}
	return acct.codeHash, nil
}

// Create implements Backend.
func (b *SimBackend) Create(ctx context.Context, from common.Address, initCode []byte, value *big.Int) (common.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sender := b.account(from)
	addr := crypto.CreateAddress(from, sender.nonce)
	sender.nonce++
	if err := b.deploy(addr, initCode); err != nil {
		return common.Address{}, err
	}
	b.block++
	return addr, nil
}

// Create2 implements Backend.
func (b *SimBackend) Create2(ctx context.Context, from common.Address, salt common.Hash, initCode []byte, value *big.Int) (common.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	addr := crypto.CreateAddress2(from, salt, crypto.Keccak256(initCode))
	if err := b.deploy(addr, initCode); err != nil {
		return common.Address{}, err
	}
	// The created account starts at nonce 1, as on-chain contracts do.
	b.block++
	return addr, nil
}

// Call implements Backend for the modeled selectors.
func (b *SimBackend) Call(ctx context.Context, from, to common.Address, data []byte, value *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[to]
	if !ok || len(acct.code) == 0 {
		return nil, ErrExecutionReverted
	}
	if len(data) < 4 {
		return nil, ErrExecutionReverted
	}
	b.block++
	var sel [4]byte
	copy(sel[:], data[:4])
	switch sel {
	case SelectorTransferOwnership:
		newOwner, ok := UnpackAddress(data[4:])
		if !ok {
			return nil, ErrExecutionReverted
		}
		owner, hasOwner := b.resolveOwner(acct)
		if !hasOwner || owner != from {
			return nil, ErrExecutionReverted
		}
		acct.hasOwner = true
		acct.owner = newOwner
		return nil, nil
	case SelectorUpgradeTo:
		impl, ok := UnpackAddress(data[4:])
		if !ok || !acct.isProxy {
			return nil, ErrExecutionReverted
		}
		owner, hasOwner := b.resolveOwner(acct)
		if !hasOwner || owner != from {
			return nil, ErrExecutionReverted
		}
		acct.impl = impl
		return nil, nil
	case SelectorUpgradeToAndCall:
		impl, ok := UnpackAddress(data[4:])
		if !ok || !acct.isProxy {
			return nil, ErrExecutionReverted
		}
		owner, hasOwner := b.resolveOwner(acct)
		if !hasOwner || owner != from {
			return nil, ErrExecutionReverted
		}
		acct.impl = impl
		// A non-empty inner call is the initializer running in the proxy's
		// own storage with msg.sender == caller, which is how the harness
		// becomes the initial owner of freshly deployed proxies.
		if innerCallLength(data) > 0 {
			acct.hasOwner = true
			acct.owner = from
		}
		return nil, nil
	default:
		return nil, ErrExecutionReverted
	}
}

// StaticCall implements Backend for the modeled probes.
func (b *SimBackend) StaticCall(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[to]
	if !ok || len(acct.code) == 0 || len(data) < 4 {
		return nil, ErrExecutionReverted
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	switch sel {
	case SelectorOwner:
		owner, hasOwner := b.resolveOwner(acct)
		if !hasOwner {
			return nil, ErrExecutionReverted
		}
		return leftPadAddress(owner), nil
	case SelectorProxiableUUID:
		if !acct.isStub {
			return nil, ErrExecutionReverted
		}
		return erc1967ImplementationSlot.Bytes(), nil
	default:
		return nil, ErrExecutionReverted
	}
}

// innerCallLength reads the dynamic-bytes length word out of
// upgradeToAndCall calldata. Zero means no initializer call.
func innerCallLength(data []byte) uint64 {
	const lengthWord = 4 + 32 + 32 // selector, impl word, offset word
	if len(data) < lengthWord+32 {
		return 0
	}
	var n uint64
	for _, b := range data[lengthWord+24 : lengthWord+32] {
		n = n<<8 | uint64(b)
	}
	return n
}

// resolveOwner answers owner() the way a delegating proxy would: a proxy
// without its own owner storage falls through to its implementation's
// immutable owner (the bootstrap stub case).
func (b *SimBackend) resolveOwner(acct *simAccount) (common.Address, bool) {
	if acct.hasOwner {
		return acct.owner, true
	}
	if acct.isProxy {
		if impl, ok := b.accounts[acct.impl]; ok && impl.hasOwner {
			return impl.owner, true
		}
	}
	return common.Address{}, false
}

// account returns the record for addr, creating an empty (EOA) one.
func (b *SimBackend) account(addr common.Address) *simAccount {
	acct, ok := b.accounts[addr]
	if !ok {
		acct = &simAccount{}
		b.accounts[addr] = acct
	}
	return acct
}

// deploy places code at addr, interpreting recognized archetype tags.
func (b *SimBackend) deploy(addr common.Address, initCode []byte) error {
	if len(initCode) == 0 {
		return ErrExecutionReverted
	}
	existing, ok := b.accounts[addr]
	if ok && len(existing.code) > 0 {
		// address collision
		return ErrExecutionReverted
	}
	acct := b.account(addr)
	acct.code = append([]byte{}, initCode...)
	acct.codeHash = crypto.Keccak256Hash(initCode)
	acct.nonce = 1

	switch {
	case bytes.HasPrefix(initCode, simStubTag) && len(initCode) >= len(simStubTag)+20:
		acct.isStub = true
		acct.hasOwner = true
		acct.owner = common.BytesToAddress(initCode[len(simStubTag) : len(simStubTag)+20])
	case bytes.HasPrefix(initCode, simProxyTag) && len(initCode) >= len(simProxyTag)+20:
		acct.isProxy = true
		acct.impl = common.BytesToAddress(initCode[len(simProxyTag) : len(simProxyTag)+20])
	case bytes.HasPrefix(initCode, simOwnableTag) && len(initCode) >= len(simOwnableTag)+20:
		acct.hasOwner = true
		acct.owner = common.BytesToAddress(initCode[len(simOwnableTag) : len(simOwnableTag)+20])
	}
	return nil
}

// SimArtifacts synthesizes init code the simulator recognizes.
type SimArtifacts struct{}

// BootstrapStub implements Artifacts.
func (SimArtifacts) BootstrapStub(owner common.Address) []byte {
	return append(append([]byte{}, simStubTag...), owner.Bytes()...)
}

// ERC1967Proxy implements Artifacts.
func (SimArtifacts) ERC1967Proxy(implementation common.Address, data []byte) []byte {
	out := append(append([]byte{}, simProxyTag...), implementation.Bytes()...)
	return append(out, data...)
}

// SimOwnableInitCode builds an ownable contract blob for tests.
func SimOwnableInitCode(owner common.Address) []byte {
	return append(append([]byte{}, simOwnableTag...), owner.Bytes()...)
}
