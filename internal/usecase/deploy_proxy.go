package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// DeployProxyParams contains parameters for deploying a proxy
type DeployProxyParams struct {
	// ProxyKey is the registry key, e.g. "contracts.token".
	ProxyKey string
	// Implementation is either a hex address or a registry key of an
	// already-deployed implementation.
	Implementation string
	// InitData is the initializer calldata forwarded on first upgrade.
	InitData []byte
	// Value is wei attached to the proxy deployment.
	Value *big.Int
}

// DeployProxyResult reports the deployed addresses
type DeployProxyResult struct {
	ProxyKey       string
	Address        common.Address
	Implementation common.Address
}

// DeployProxy is the use case for deterministic proxy deployment
type DeployProxy struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewDeployProxy creates a new DeployProxy use case
func NewDeployProxy(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *DeployProxy {
	return &DeployProxy{config: cfg, sess: sess, sink: sink}
}

// Run executes the deploy proxy use case
func (uc *DeployProxy) Run(ctx context.Context, params DeployProxyParams) (*DeployProxyResult, error) {
	predicted := uc.sess.PredictProxyAddress(params.ProxyKey)
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: fmt.Sprintf("Deploying %s to %s", params.ProxyKey, predicted.Hex()),
		Spinner: true,
	})

	addr, err := uc.sess.DeployProxy(ctx, params.ProxyKey, params.Implementation, params.InitData, params.Value)
	if err != nil {
		return nil, err
	}

	impl, _ := uc.sess.Store().Get(params.ProxyKey + ".implementation")
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: fmt.Sprintf("Deployed %s at %s", params.ProxyKey, addr.Hex()),
	})
	return &DeployProxyResult{
		ProxyKey:       params.ProxyKey,
		Address:        addr,
		Implementation: impl,
	}, nil
}
