package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// DeployContractParams contains parameters for a deterministic contract
// deployment
type DeployContractParams struct {
	// Key is the registry key, e.g. "contracts.tokenImpl".
	Key string
	// Artifact references the compiled contract to deploy.
	Artifact string
	// Value is wei attached to the deployment.
	Value *big.Int
}

// DeployContractResult reports the deployed address
type DeployContractResult struct {
	Key     string
	Address common.Address
}

// DeployContract is the use case for deploying a plain contract to its
// deterministic address
type DeployContract struct {
	config    *config.RuntimeConfig
	sess      *session.Session
	artifacts ArtifactRepository
	sink      ProgressSink
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(cfg *config.RuntimeConfig, sess *session.Session, artifacts ArtifactRepository, sink ProgressSink) *DeployContract {
	return &DeployContract{config: cfg, sess: sess, artifacts: artifacts, sink: sink}
}

// Run executes the deploy contract use case
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) (*DeployContractResult, error) {
	artifact, err := uc.artifacts.Load(ctx, params.Artifact)
	if err != nil {
		return nil, err
	}

	predicted := uc.sess.PredictContractAddress(params.Key)
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: fmt.Sprintf("Deploying %s to %s", params.Key, predicted.Hex()),
		Spinner: true,
	})

	addr, err := uc.sess.PredictableDeployContract(ctx, params.Key, artifact.InitCode, artifact.Name, artifact.SourcePath, params.Value)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: fmt.Sprintf("Deployed %s at %s", params.Key, addr.Hex()),
	})
	return &DeployContractResult{Key: params.Key, Address: addr}, nil
}
