package usecase

import (
	"context"
	"fmt"

	"github.com/baolabs/bao-deploy/internal/config"
	"github.com/baolabs/bao-deploy/internal/session"
)

// FinishSessionResult reports the finish sweep outcome
type FinishSessionResult struct {
	// Transferred is how many entries had ownership handed over.
	Transferred int
}

// FinishSession is the use case for sealing a deployment session
type FinishSession struct {
	config *config.RuntimeConfig
	sess   *session.Session
	sink   ProgressSink
}

// NewFinishSession creates a new FinishSession use case
func NewFinishSession(cfg *config.RuntimeConfig, sess *session.Session, sink ProgressSink) *FinishSession {
	return &FinishSession{config: cfg, sess: sess, sink: sink}
}

// Run executes the finish session use case
func (uc *FinishSession) Run(ctx context.Context) (*FinishSessionResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "finishing",
		Message: "Transferring ownership of deployed contracts",
		Spinner: true,
	})

	transferred, err := uc.sess.Finish(ctx)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Message: fmt.Sprintf("Session finished, %d ownership transfers", transferred),
	})
	return &FinishSessionResult{Transferred: transferred}, nil
}
