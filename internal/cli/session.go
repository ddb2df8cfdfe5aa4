package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// NewStartCmd creates the start command
func NewStartCmd() *cobra.Command {
	var saltString string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new deployment session",
		Long: `Start a new deployment session on the selected network.

Starting records the session metadata, grants the deployer its operator
slot on the factory, and deploys the upgrade bootstrap stub.`,
		Example: `  # Start a session on the simulator
  bao start -n sim

  # Start with an explicit salt string
  bao start -n sepolia --salt v1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			return app.StartSession.Run(cmd.Context(), usecase.StartSessionParams{
				SaltString: saltString,
			})
		},
	}

	cmd.Flags().StringVar(&saltString, "salt", "", "System salt string (defaults to bao.toml)")
	return cmd
}

// NewResumeCmd creates the resume command
func NewResumeCmd() *cobra.Command {
	var saltString string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume a persisted deployment session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			return app.ResumeSession.Run(cmd.Context(), usecase.ResumeSessionParams{
				SaltString: saltString,
			})
		},
	}

	cmd.Flags().StringVar(&saltString, "salt", "", "System salt string (defaults to bao.toml)")
	return cmd
}

// NewFinishCmd creates the finish command
func NewFinishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Finish the session and transfer ownership",
		Long: `Finish the deployment session.

Every proxy the session deployed that is still owned by the deployer is
transferred to the configured final owner, then the session is sealed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}
			result, err := app.FinishSession.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session finished: %d ownership transfers\n", result.Transferred)
			return nil
		},
	}
	return cmd
}
