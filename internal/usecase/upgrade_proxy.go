package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// UpgradeProxyParams contains parameters for upgrading a proxy
type UpgradeProxyParams struct {
	ProxyKey       string
	Implementation string
	InitData       []byte
	Value          *big.Int
}

// UpgradeProxy is the use case for pointing a proxy at a new implementation
type UpgradeProxy struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewUpgradeProxy creates a new UpgradeProxy use case
func NewUpgradeProxy(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *UpgradeProxy {
	return &UpgradeProxy{config: cfg, sess: sess, sink: sink}
}

// Run executes the upgrade proxy use case
func (uc *UpgradeProxy) Run(ctx context.Context, params UpgradeProxyParams) error {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "upgrading",
		Message: fmt.Sprintf("Upgrading %s", params.ProxyKey),
		Spinner: true,
	})

	if err := uc.sess.UpgradeProxy(ctx, params.ProxyKey, params.Implementation, params.InitData, params.Value); err != nil {
		return err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: fmt.Sprintf("Upgraded %s", params.ProxyKey),
	})
	return nil
}
