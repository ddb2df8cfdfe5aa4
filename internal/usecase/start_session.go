package usecase

import (
	"context"
	"fmt"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// StartSessionParams contains parameters for starting a session
type StartSessionParams struct {
	// SaltString overrides the configured system salt.
	SaltString string
}

// StartSession is the use case for beginning a deployment session
type StartSession struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewStartSession creates a new StartSession use case
func NewStartSession(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *StartSession {
	return &StartSession{config: cfg, sess: sess, sink: sink}
}

// Run executes the start session use case
func (uc *StartSession) Run(ctx context.Context, params StartSessionParams) error {
	if uc.config.Network == nil {
		return fmt.Errorf("no network selected")
	}
	saltString := params.SaltString
	if saltString == "" {
		saltString = uc.config.SaltString
	}
	if saltString == "" {
		return fmt.Errorf("no salt string configured")
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "starting",
		Message: fmt.Sprintf("Starting session on %s", uc.config.Network.Name),
		Spinner: true,
	})

	if err := uc.sess.Start(ctx, uc.config.Network.Name, saltString); err != nil {
		return err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Session started",
	})
	return nil
}
