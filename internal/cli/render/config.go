package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

// Render renders the effective configuration
func (r *ConfigRenderer) Render(result *usecase.ShowConfigResult) error {
	cfg := result.Config

	fmt.Fprintln(r.out, "Current config:")
	fmt.Fprintf(r.out, "Namespace:   %s\n", cfg.Namespace)
	if cfg.Network != nil {
		fmt.Fprintf(r.out, "Network:     %s (chain %d)\n", cfg.Network.Name, cfg.Network.ChainID)
	} else {
		fmt.Fprintf(r.out, "Network:     %s\n", "(not set)")
	}
	fmt.Fprintf(r.out, "Salt string: %s\n", orUnset(cfg.SaltString))
	fmt.Fprintf(r.out, "Version:     %s\n", orUnset(cfg.Version))
	if cfg.Owner != (common.Address{}) {
		fmt.Fprintf(r.out, "Owner:       %s\n", cfg.Owner.Hex())
	} else {
		fmt.Fprintf(r.out, "Owner:       %s\n", "(deployer)")
	}
	fmt.Fprintf(r.out, "Project:     %s\n", cfg.ProjectRoot)
	if cfg.TestRun {
		fmt.Fprintln(r.out, "Mode:        test run")
	}
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
