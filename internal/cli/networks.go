package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/config"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			resolver, err := config.NewNetworkResolver(app.Config.ProjectRoot)
			if err != nil {
				return err
			}
			for _, name := range resolver.Names() {
				n, err := resolver.Resolve(name)
				if err != nil {
					continue
				}
				if n.IsSim() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s chain %d (in-process)\n", n.Name, n.ChainID)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s chain %d  %s\n", n.Name, n.ChainID, n.RPCURL)
			}
			return nil
		},
	}
	return cmd
}
