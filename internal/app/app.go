package app

import (
	"log/slog"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Logger *slog.Logger

	// Shared dependencies
	Session  *session.Session
	Selector usecase.EntrySelector

	// Use cases
	StartSession     *usecase.StartSession
	ResumeSession    *usecase.ResumeSession
	FinishSession    *usecase.FinishSession
	DeployProxy      *usecase.DeployProxy
	UpgradeProxy     *usecase.UpgradeProxy
	DeployContract   *usecase.DeployContract
	DeployLibrary    *usecase.DeployLibrary
	RegisterExisting *usecase.RegisterExisting
	PredictAddress   *usecase.PredictAddress
	ListEntries      *usecase.ListEntries
	ShowEntry        *usecase.ShowEntry
	ShowConfig       *usecase.ShowConfig
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	logger *slog.Logger,
	sess *session.Session,
	selector usecase.EntrySelector,
	startSession *usecase.StartSession,
	resumeSession *usecase.ResumeSession,
	finishSession *usecase.FinishSession,
	deployProxy *usecase.DeployProxy,
	upgradeProxy *usecase.UpgradeProxy,
	deployContract *usecase.DeployContract,
	deployLibrary *usecase.DeployLibrary,
	registerExisting *usecase.RegisterExisting,
	predictAddress *usecase.PredictAddress,
	listEntries *usecase.ListEntries,
	showEntry *usecase.ShowEntry,
	showConfig *usecase.ShowConfig,
) (*App, error) {
	return &App{
		Config:           cfg,
		Logger:           logger,
		Session:          sess,
		Selector:         selector,
		StartSession:     startSession,
		ResumeSession:    resumeSession,
		FinishSession:    finishSession,
		DeployProxy:      deployProxy,
		UpgradeProxy:     upgradeProxy,
		DeployContract:   deployContract,
		DeployLibrary:    deployLibrary,
		RegisterExisting: registerExisting,
		PredictAddress:   predictAddress,
		ListEntries:      listEntries,
		ShowEntry:        showEntry,
		ShowConfig:       showConfig,
	}, nil
}
