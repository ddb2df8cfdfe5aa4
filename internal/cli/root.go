package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baolabs/bao-deploy/internal/adapters/progress"
	"github.com/baolabs/bao-deploy/internal/app"
	"github.com/baolabs/bao-deploy/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bao",
		Short: "Deterministic smart contract deployment harness",
		Long: `Bao deploys smart contracts to deterministic addresses derived from
string keys, records every result in a typed registry, and hands
ownership over when the session finishes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)
			bindGlobalFlags(v, cmd)

			sink := progress.NewSpinnerSink()

			appInstance, err := app.InitApp(cmd.Context(), v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringP("namespace", "s", "", "Deployment namespace (defaults to 'default')")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., mainnet, sim)")
	rootCmd.PersistentFlags().Bool("test-run", false, "Write results to the flat test layout")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "session",
		Title: "Session Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "deployment",
		Title: "Deployment Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	// Session commands
	for _, c := range []*cobra.Command{NewStartCmd(), NewResumeCmd(), NewFinishCmd()} {
		c.GroupID = "session"
		rootCmd.AddCommand(c)
	}

	// Deployment commands
	for _, c := range []*cobra.Command{NewDeployCmd(), NewUpgradeCmd(), NewDeployContractCmd(), NewDeployLibraryCmd(), NewRegisterCmd(), NewPredictCmd()} {
		c.GroupID = "deployment"
		rootCmd.AddCommand(c)
	}

	// Management commands
	for _, c := range []*cobra.Command{NewListCmd(), NewShowCmd(), NewConfigCmd(), NewNetworksCmd()} {
		c.GroupID = "management"
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// bindGlobalFlags binds command flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Only bind flags that exist and have been changed
	if f := cmd.Flag("debug"); f != nil && f.Changed {
		v.Set("debug", f.Value.String())
	}
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		v.Set("non_interactive", f.Value.String())
	}
	if f := cmd.Flag("json"); f != nil && f.Changed {
		v.Set("json", f.Value.String())
	}
	if f := cmd.Flag("namespace"); f != nil && f.Changed {
		v.Set("namespace", f.Value.String())
	}
	if f := cmd.Flag("network"); f != nil && f.Changed {
		v.Set("network", f.Value.String())
	}
	if f := cmd.Flag("test-run"); f != nil && f.Changed {
		v.Set("test_run", f.Value.String())
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}
