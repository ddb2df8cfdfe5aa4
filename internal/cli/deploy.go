package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// NewDeployCmd creates the proxy deployment command
func NewDeployCmd() *cobra.Command {
	var (
		implementation string
		initData       string
		value          string
	)

	cmd := &cobra.Command{
		Use:   "deploy <key>",
		Short: "Deploy a UUPS proxy to its deterministic address",
		Long: `Deploy an ERC1967 proxy to the address derived from the registry key
and point it at an implementation in the same step.

The implementation is referenced by registry key (deployed earlier with
deploy-contract) or by literal address.`,
		Example: `  # Deploy contracts.token pointing at an implementation key
  bao deploy contracts.token --impl contracts.tokenImpl --init-data 0x8129fc1c

  # Reference the implementation by address
  bao deploy contracts.vault --impl 0xabc...def`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}

			wei, err := parseValue(value)
			if err != nil {
				return err
			}

			result, err := app.DeployProxy.Run(cmd.Context(), usecase.DeployProxyParams{
				ProxyKey:       args[0],
				Implementation: implementation,
				InitData:       common.FromHex(initData),
				Value:          wei,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deployed at %s (implementation %s)\n",
				result.ProxyKey, result.Address.Hex(), result.Implementation.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&implementation, "impl", "", "Implementation registry key or address (required)")
	cmd.Flags().StringVar(&initData, "init-data", "", "Initializer calldata as hex")
	cmd.Flags().StringVar(&value, "value", "", "Wei to attach to the deployment")
	_ = cmd.MarkFlagRequired("impl")
	return cmd
}

// NewUpgradeCmd creates the proxy upgrade command
func NewUpgradeCmd() *cobra.Command {
	var (
		implementation string
		initData       string
		value          string
	)

	cmd := &cobra.Command{
		Use:   "upgrade <key>",
		Short: "Upgrade a deployed proxy to a new implementation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}

			wei, err := parseValue(value)
			if err != nil {
				return err
			}

			return app.UpgradeProxy.Run(cmd.Context(), usecase.UpgradeProxyParams{
				ProxyKey:       args[0],
				Implementation: implementation,
				InitData:       common.FromHex(initData),
				Value:          wei,
			})
		},
	}

	cmd.Flags().StringVar(&implementation, "impl", "", "Implementation registry key or address (required)")
	cmd.Flags().StringVar(&initData, "init-data", "", "Migration calldata as hex")
	cmd.Flags().StringVar(&value, "value", "", "Wei to attach to the call")
	_ = cmd.MarkFlagRequired("impl")
	return cmd
}

// parseValue parses a decimal wei amount. Empty means zero.
func parseValue(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	wei, ok := new(big.Int).SetString(s, 10)
	if !ok || wei.Sign() < 0 {
		return nil, fmt.Errorf("invalid wei amount %q", s)
	}
	return wei, nil
}
