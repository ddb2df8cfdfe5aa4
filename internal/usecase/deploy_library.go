package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// DeployLibraryParams contains parameters for a library deployment
type DeployLibraryParams struct {
	Key      string
	Artifact string
}

// DeployLibraryResult reports the deployed address
type DeployLibraryResult struct {
	Key     string
	Address common.Address
}

// DeployLibrary is the use case for deploying a linkable library. Library
// addresses are not deterministic; they go through a plain CREATE.
type DeployLibrary struct {
	config    *config.RuntimeConfig
	sess      *session.Session
	artifacts ArtifactRepository
	sink      ProgressSink
}

// NewDeployLibrary creates a new DeployLibrary use case
func NewDeployLibrary(cfg *config.RuntimeConfig, sess *session.Session, artifacts ArtifactRepository, sink ProgressSink) *DeployLibrary {
	return &DeployLibrary{config: cfg, sess: sess, artifacts: artifacts, sink: sink}
}

// Run executes the deploy library use case
func (uc *DeployLibrary) Run(ctx context.Context, params DeployLibraryParams) (*DeployLibraryResult, error) {
	artifact, err := uc.artifacts.Load(ctx, params.Artifact)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: fmt.Sprintf("Deploying library %s", params.Key),
		Spinner: true,
	})

	addr, err := uc.sess.DeployLibrary(ctx, params.Key, artifact.InitCode, artifact.Name, artifact.SourcePath)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: fmt.Sprintf("Deployed library %s at %s", params.Key, addr.Hex()),
	})
	return &DeployLibraryResult{Key: params.Key, Address: addr}, nil
}
