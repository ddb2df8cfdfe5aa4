package factory

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/chain"
)

// Salt derivation lives here and only here. Splitting it across call sites
// is how "predict" and "deploy" drift apart, so every consumer goes
// through these two functions.

const (
	contractSaltSuffix = "/contract"
	proxySaltSuffix    = "/UUPS/proxy"
)

// ContractSalt derives the deterministic salt for a plain contract key.
func ContractSalt(systemSalt, key string) common.Hash {
	return chain.Keccak([]byte(systemSalt + "/" + key + contractSaltSuffix))
}

// ProxySalt derives the deterministic salt for a proxy key.
func ProxySalt(systemSalt, key string) common.Hash {
	return chain.Keccak([]byte(systemSalt + "/" + key + proxySaltSuffix))
}

// CommitmentHash binds operator, value, salt and init-code hash into the
// commitment recorded before a reveal.
func CommitmentHash(operator common.Address, value *big.Int, salt, initCodeHash common.Hash) common.Hash {
	payload := make([]byte, 0, 20+32+32+32)
	payload = append(payload, operator.Bytes()...)
	payload = append(payload, common.BigToHash(value).Bytes()...)
	payload = append(payload, salt.Bytes()...)
	payload = append(payload, initCodeHash.Bytes()...)
	return chain.Keccak(payload)
}

// ValueMode selects how much value a reveal forwards.
type ValueMode int

const (
	// ValueModeMatch forwards the requested value.
	ValueModeMatch ValueMode = iota
	// ValueModeZero forwards nothing regardless of the request. Exists to
	// exercise the ValueMismatch failure path deliberately.
	ValueModeZero
)

// CommitRequest carries everything a commit-reveal deployment needs.
type CommitRequest struct {
	Operator   common.Address
	SaltString string
	Key        string
	InitCode   []byte
	Value      *big.Int
	// Proxy selects the proxy salt suffix instead of the contract one.
	Proxy bool
}

// Validate checks the required fields before any salt is derived.
func (r *CommitRequest) Validate() error {
	if r.Operator == (common.Address{}) {
		return errors.New("commit request: operator is required")
	}
	if r.SaltString == "" {
		return errors.New("commit request: salt string is required")
	}
	if r.Key == "" {
		return errors.New("commit request: key is required")
	}
	if len(r.InitCode) == 0 {
		return errors.New("commit request: init code is required")
	}
	return nil
}

// Salt derives the request's deterministic salt.
func (r *CommitRequest) Salt() common.Hash {
	if r.Proxy {
		return ProxySalt(r.SaltString, r.Key)
	}
	return ContractSalt(r.SaltString, r.Key)
}

func (r *CommitRequest) value() *big.Int {
	if r.Value == nil {
		return new(big.Int)
	}
	return r.Value
}

// Flow sequences commit and reveal against a factory.
type Flow struct {
	api API
}

// NewFlow creates a flow helper over a factory API.
func NewFlow(api API) *Flow {
	return &Flow{api: api}
}

// Predict returns the address the request would deploy to.
func (f *Flow) Predict(req *CommitRequest) common.Address {
	return f.api.PredictAddress(req.Salt())
}

// CommitOnly validates the request, derives the salt, and submits the
// commitment. Returns the commitment hash for a later reveal.
func (f *Flow) CommitOnly(ctx context.Context, req *CommitRequest) (common.Hash, error) {
	if err := req.Validate(); err != nil {
		return common.Hash{}, err
	}
	commitment := CommitmentHash(req.Operator, req.value(), req.Salt(), chain.Keccak(req.InitCode))
	if err := f.api.Commit(ctx, req.Operator, commitment); err != nil {
		return common.Hash{}, err
	}
	return commitment, nil
}

// CommitAndReveal runs the full two-phase deployment.
func (f *Flow) CommitAndReveal(ctx context.Context, req *CommitRequest, mode ValueMode) (common.Address, error) {
	if _, err := f.CommitOnly(ctx, req); err != nil {
		return common.Address{}, err
	}
	paid := req.value()
	if mode == ValueModeZero {
		paid = new(big.Int)
	}
	return f.api.Reveal(ctx, req.Operator, req.InitCode, req.Salt(), req.value(), paid)
}
