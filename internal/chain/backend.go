package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrExecutionReverted is returned by backends when a call or deployment
// reverts. It carries no retry semantics; every revert is final.
var ErrExecutionReverted = errors.New("execution reverted")

// Backend is the boundary to the chain. Implementations are the in-memory
// simulator and the RPC client; none of the deployment-harness logic above
// this interface touches a VM directly.
type Backend interface {
	// ChainID returns the chain identifier.
	ChainID(ctx context.Context) (uint64, error)

	// BlockNumber returns the current block height.
	BlockNumber(ctx context.Context) (uint64, error)

	// Timestamp returns the current block timestamp.
	Timestamp(ctx context.Context) (uint64, error)

	// CodeHashAt returns the keccak hash of the code at addr, or the zero
	// hash for an empty account.
	CodeHashAt(ctx context.Context, addr common.Address) (common.Hash, error)

	// Create performs a plain CREATE from the given account.
	Create(ctx context.Context, from common.Address, initCode []byte, value *big.Int) (common.Address, error)

	// Create2 performs a CREATE2 from the given account.
	Create2(ctx context.Context, from common.Address, salt common.Hash, initCode []byte, value *big.Int) (common.Address, error)

	// Call performs a state-changing call.
	Call(ctx context.Context, from, to common.Address, data []byte, value *big.Int) ([]byte, error)

	// StaticCall performs a read-only call.
	StaticCall(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}
