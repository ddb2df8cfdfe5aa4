package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// NewPredictCmd creates the address prediction command
func NewPredictCmd() *cobra.Command {
	var (
		contract   bool
		saltString string
	)

	cmd := &cobra.Command{
		Use:   "predict <key>",
		Short: "Predict the deterministic address for a key",
		Long: `Predict the address a key will deploy to, before anything exists on
chain. Predicts the proxy address by default; use --contract for the
plain contract salt.`,
		Example: `  # Where will contracts.token live?
  bao predict contracts.token

  # Plain contract address under a different salt
  bao predict contracts.tokenImpl --contract --salt v2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.PredictAddress.Run(cmd.Context(), usecase.PredictAddressParams{
				Key:        args[0],
				Proxy:      !contract,
				SaltString: saltString,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", result.Key, result.Address.Hex())
			return nil
		},
	}

	cmd.Flags().BoolVar(&contract, "contract", false, "Use the contract salt instead of the proxy salt")
	cmd.Flags().StringVar(&saltString, "salt", "", "System salt string (defaults to bao.toml)")
	return cmd
}
