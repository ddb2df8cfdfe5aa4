package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/cli/render"
	"github.com/baolabs/bao-deploy/internal/domain"
	"github.com/baolabs/bao-deploy/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List deployments from the registry",
		Long: `List all deployed entries recorded in the current deployment document.

The list can be filtered by category.`,
		Example: `  # List everything
  bao list

  # Proxies only
  bao list --category "UUPS proxy"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}

			result, err := app.ListEntries.Run(cmd.Context(), usecase.ListEntriesParams{
				Category: domain.Category(category),
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				data, err := json.MarshalIndent(result.Entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewEntriesRenderer(cmd.OutOrStdout(), !app.Config.JSON)
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category (contract, UUPS proxy, library, existing)")
	return cmd
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show detailed information about one deployment",
		Long: `Show detailed information about a specific deployment.

The argument is matched exactly first, then fuzzily against all recorded
keys. Ambiguous matches prompt for a selection.`,
		Example: `  bao show contracts.token
  bao show token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}

			result, err := app.ShowEntry.Run(cmd.Context(), usecase.ShowEntryParams{
				Query: args[0],
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				data, err := json.MarshalIndent(result.Entry, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewEntryRenderer(cmd.OutOrStdout(), true)
			return renderer.Render(result)
		},
	}
	return cmd
}
