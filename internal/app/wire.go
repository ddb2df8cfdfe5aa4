//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/baolabs/bao-deploy/internal/adapters"
	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/logging"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(ctx context.Context, v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration and logging
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewStartSession,
		usecase.NewResumeSession,
		usecase.NewFinishSession,
		usecase.NewDeployProxy,
		usecase.NewUpgradeProxy,
		usecase.NewDeployContract,
		usecase.NewDeployLibrary,
		usecase.NewRegisterExisting,
		usecase.NewPredictAddress,
		usecase.NewListEntries,
		usecase.NewShowEntry,
		usecase.NewShowConfig,

		// App
		NewApp,
	)
	return nil, nil
}
