package usecase

import (
	"context"
	"fmt"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// ResumeSessionParams contains parameters for resuming a session
type ResumeSessionParams struct {
	SaltString string
}

// ResumeSession is the use case for continuing a persisted session
type ResumeSession struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewResumeSession creates a new ResumeSession use case
func NewResumeSession(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *ResumeSession {
	return &ResumeSession{config: cfg, sess: sess, sink: sink}
}

// Run executes the resume session use case
func (uc *ResumeSession) Run(ctx context.Context, params ResumeSessionParams) error {
	saltString := params.SaltString
	if saltString == "" {
		saltString = uc.config.SaltString
	}
	if saltString == "" {
		return fmt.Errorf("no salt string configured")
	}

	var network string
	if uc.config.Network != nil {
		network = uc.config.Network.Name
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading deployment document",
		Spinner: true,
	})

	if err := uc.sess.Resume(ctx, network, saltString); err != nil {
		return err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: "Session resumed",
	})
	return nil
}
