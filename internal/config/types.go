package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Namespace string   // selects a [ns.<name>] section in bao.toml
	Network   *Network // nil if not specified

	// Deployment identity
	SaltString string
	Version    string
	Owner      common.Address
	// DeployerKey is the hex private key of the harness account. Comes
	// from the environment, never from bao.toml.
	DeployerKey string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// TestRun redirects persistence to the flat results/ layout.
	TestRun bool

	// Resolved configurations
	BaoConfig *BaoFileConfig
}

// Network represents a resolved network configuration
type Network struct {
	Name        string `yaml:"-"`
	ChainID     uint64 `yaml:"chainId"`
	RPCURL      string `yaml:"rpc"`
	ExplorerURL string `yaml:"explorer,omitempty"`
}

// SimNetworkName selects the in-process simulated chain instead of RPC.
const SimNetworkName = "sim"

// IsSim reports whether the network is the in-process simulator.
func (n *Network) IsSim() bool {
	return n != nil && n.Name == SimNetworkName
}
