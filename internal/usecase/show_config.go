package usecase

import (
	"context"

	"github.com/baolabs/bao-deploy/internal/config"
)

// ShowConfigResult contains the effective configuration
type ShowConfigResult struct {
	Config *config.RuntimeConfig
}

// ShowConfig is the use case for printing the resolved configuration
type ShowConfig struct {
	config *config.RuntimeConfig
}

// NewShowConfig creates a new ShowConfig use case
func NewShowConfig(cfg *config.RuntimeConfig) *ShowConfig {
	return &ShowConfig{config: cfg}
}

// Run executes the show config use case
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	return &ShowConfigResult{Config: uc.config}, nil
}
