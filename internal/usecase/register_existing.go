package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// RegisterExistingParams contains parameters for recording a contract
// that was deployed outside this harness
type RegisterExistingParams struct {
	Key     string
	Address common.Address
}

// RegisterExisting is the use case for adopting an external contract
type RegisterExisting struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewRegisterExisting creates a new RegisterExisting use case
func NewRegisterExisting(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *RegisterExisting {
	return &RegisterExisting{config: cfg, sess: sess, sink: sink}
}

// Run executes the register existing use case
func (uc *RegisterExisting) Run(ctx context.Context, params RegisterExistingParams) error {
	if err := uc.sess.UseExisting(ctx, params.Key, params.Address); err != nil {
		return err
	}
	uc.sink.Info(fmt.Sprintf("Registered %s -> %s", params.Key, params.Address.Hex()))
	return nil
}
