package cli

import (
	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/app"
	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// ensureSession resumes the persisted session when the process starts
// cold. Commands that mutate or read session state call this first; the
// start command is the only one that begins from nothing.
func ensureSession(cmd *cobra.Command, a *app.App) error {
	if a.Session.State() != domain.SessionNone {
		return nil
	}
	return a.ResumeSession.Run(cmd.Context(), usecase.ResumeSessionParams{})
}
