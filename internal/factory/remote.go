package factory

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/baolabs/bao-deploy/internal/chain"
)

// Remote drives an already-deployed factory contract over a backend. The
// protocol state (operator grants, commitments) lives on chain; this type
// only packs calldata and forwards calls.
type Remote struct {
	backend chain.Backend
	address common.Address
	owner   common.Address
}

var (
	selSetOperator       = remoteSelector("setOperator(address,uint64)")
	selIsCurrentOperator = remoteSelector("isCurrentOperator(address)")
	selCommit            = remoteSelector("commit(bytes32)")
	selReveal            = remoteSelector("reveal(bytes,bytes32,uint256)")
	selClearCommitment   = remoteSelector("clearCommitment(bytes32)")
	selDeploy            = remoteSelector("deploy(bytes,bytes32)")
)

func remoteSelector(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

// NewRemote binds a remote factory at a known address.
func NewRemote(backend chain.Backend, address, owner common.Address) *Remote {
	return &Remote{backend: backend, address: address, owner: owner}
}

// Address implements API.
func (r *Remote) Address() common.Address {
	return r.address
}

// Owner implements API.
func (r *Remote) Owner() common.Address {
	return r.owner
}

// PredictAddress implements API. The math is identical on both sides of
// the RPC boundary, so this stays local.
func (r *Remote) PredictAddress(salt common.Hash) common.Address {
	return chain.Create3Address(r.address, salt)
}

// SetOperator implements API.
func (r *Remote) SetOperator(ctx context.Context, caller, operator common.Address, delay uint64) error {
	data := append([]byte{}, selSetOperator...)
	data = append(data, padAddress(operator)...)
	data = append(data, padUint(delay)...)
	_, err := r.backend.Call(ctx, caller, r.address, data, nil)
	return err
}

// IsCurrentOperator implements API.
func (r *Remote) IsCurrentOperator(ctx context.Context, addr common.Address) (bool, error) {
	data := append([]byte{}, selIsCurrentOperator...)
	data = append(data, padAddress(addr)...)
	ret, err := r.backend.StaticCall(ctx, r.address, data)
	if err != nil {
		return false, err
	}
	if len(ret) < 32 {
		return false, fmt.Errorf("malformed isCurrentOperator return (%d bytes)", len(ret))
	}
	return ret[31] != 0, nil
}

// Commit implements API.
func (r *Remote) Commit(ctx context.Context, caller common.Address, commitment common.Hash) error {
	data := append([]byte{}, selCommit...)
	data = append(data, commitment.Bytes()...)
	_, err := r.backend.Call(ctx, caller, r.address, data, nil)
	return err
}

// Reveal implements API. The value is attached to the transaction; the
// contract enforces the exact match itself.
func (r *Remote) Reveal(ctx context.Context, caller common.Address, initCode []byte, salt common.Hash, value, paid *big.Int) (common.Address, error) {
	data := packBytesSaltValue(selReveal, initCode, salt, value)
	if _, err := r.backend.Call(ctx, caller, r.address, data, paid); err != nil {
		return common.Address{}, err
	}
	// Transaction calls return no data; the deployed address is the
	// prediction, which reveal guarantees on success.
	return r.PredictAddress(salt), nil
}

// ClearCommitment implements API.
func (r *Remote) ClearCommitment(ctx context.Context, caller common.Address, commitment common.Hash) error {
	data := append([]byte{}, selClearCommitment...)
	data = append(data, commitment.Bytes()...)
	_, err := r.backend.Call(ctx, caller, r.address, data, nil)
	return err
}

// Deploy implements API: owner-gated direct deployment.
func (r *Remote) Deploy(ctx context.Context, caller common.Address, initCode []byte, salt common.Hash, value *big.Int) (common.Address, error) {
	data := packBytesSalt(selDeploy, initCode, salt)
	if _, err := r.backend.Call(ctx, caller, r.address, data, value); err != nil {
		return common.Address{}, err
	}
	return r.PredictAddress(salt), nil
}

// packBytesSaltValue encodes (bytes,bytes32,uint256) calldata.
func packBytesSaltValue(sel []byte, blob []byte, salt common.Hash, value *big.Int) []byte {
	if value == nil {
		value = new(big.Int)
	}
	out := append([]byte{}, sel...)
	out = append(out, padUint(96)...) // offset of bytes after three words
	out = append(out, salt.Bytes()...)
	out = append(out, common.BigToHash(value).Bytes()...)
	out = append(out, padUint(uint64(len(blob)))...)
	out = append(out, blob...)
	if rem := len(blob) % 32; rem != 0 {
		out = append(out, make([]byte, 32-rem)...)
	}
	return out
}

// packBytesSalt encodes (bytes,bytes32) calldata.
func packBytesSalt(sel []byte, blob []byte, salt common.Hash) []byte {
	out := append([]byte{}, sel...)
	out = append(out, padUint(64)...)
	out = append(out, salt.Bytes()...)
	out = append(out, padUint(uint64(len(blob)))...)
	out = append(out, blob...)
	if rem := len(blob) % 32; rem != 0 {
		out = append(out, make([]byte, 32-rem)...)
	}
	return out
}

func padAddress(a common.Address) []byte {
	word := make([]byte, 32)
	copy(word[12:], a.Bytes())
	return word
}

func padUint(n uint64) []byte {
	word := make([]byte, 32)
	for i := 0; n > 0; i++ {
		word[31-i] = byte(n & 0xff)
		n >>= 8
	}
	return word
}
