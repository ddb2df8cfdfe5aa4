package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// NewDeployContractCmd creates the plain contract deployment command
func NewDeployContractCmd() *cobra.Command {
	var (
		artifact string
		value    string
	)

	cmd := &cobra.Command{
		Use:   "deploy-contract <key>",
		Short: "Deploy a contract to its deterministic address",
		Long: `Deploy arbitrary creation bytecode to the address derived from the
registry key, through the factory's commit-reveal flow.`,
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

			result, err := app.DeployContract.Run(cmd.Context(), usecase.DeployContractParams{
				Key:      args[0],
				Artifact: artifact,
				Value:    wei,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deployed at %s\n", result.Key, result.Address.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "Artifact name under artifacts/ (required)")
	cmd.Flags().StringVar(&value, "value", "", "Wei to attach to the deployment")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}

// NewDeployLibraryCmd creates the library deployment command
func NewDeployLibraryCmd() *cobra.Command {
	var artifact string

	cmd := &cobra.Command{
		Use:   "deploy-library <key>",
		Short: "Deploy a linkable library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}

			result, err := app.DeployLibrary.Run(cmd.Context(), usecase.DeployLibraryParams{
				Key:      args[0],
				Artifact: artifact,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deployed at %s\n", result.Key, result.Address.Hex())
			return nil
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "Artifact name under artifacts/ (required)")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}

// NewRegisterCmd creates the register command for external contracts
func NewRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <key> <address>",
		Short: "Record an already-deployed contract under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if err := ensureSession(cmd, app); err != nil {
				return err
			}

			if !common.IsHexAddress(args[1]) {
				return fmt.Errorf("invalid address %q", args[1])
			}
			return app.RegisterExisting.Run(cmd.Context(), usecase.RegisterExistingParams{
				Key:     args[0],
				Address: common.HexToAddress(args[1]),
			})
		},
	}
	return cmd
}
