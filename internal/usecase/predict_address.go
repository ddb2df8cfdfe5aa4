package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/factory"
)

// PredictAddressParams contains parameters for address prediction
type PredictAddressParams struct {
	Key string
	// Proxy selects the proxy salt instead of the contract salt.
	Proxy bool
	// SaltString overrides the configured system salt.
	SaltString string
}

// PredictAddressResult reports the deterministic address
type PredictAddressResult struct {
	Key     string
	Address common.Address
}

// PredictAddress is the use case for computing an address before
// deployment. Pure math over the factory address; touches no chain state
// and needs no session.
type PredictAddress struct {
	config *config.RuntimeConfig
	fact   factory.API
}

// NewPredictAddress creates a new PredictAddress use case
func NewPredictAddress(cfg *config.RuntimeConfig, fact factory.API) *PredictAddress {
	return &PredictAddress{config: cfg, fact: fact}
}

// Run executes the predict address use case
func (uc *PredictAddress) Run(ctx context.Context, params PredictAddressParams) (*PredictAddressResult, error) {
	saltString := params.SaltString
	if saltString == "" {
		saltString = uc.config.SaltString
	}
	if saltString == "" {
		return nil, fmt.Errorf("no salt string configured")
	}

	var salt common.Hash
	if params.Proxy {
		salt = factory.ProxySalt(saltString, params.Key)
	} else {
		salt = factory.ContractSalt(saltString, params.Key)
	}
	return &PredictAddressResult{Key: params.Key, Address: uc.fact.PredictAddress(salt)}, nil
}
