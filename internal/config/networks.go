package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// NetworksFileName lists the RPC networks the project deploys to.
const NetworksFileName = "networks.yaml"

// networksFile is the on-disk shape: network name -> settings.
type networksFile struct {
	Networks map[string]*Network `yaml:"networks"`
}

// NetworkResolver resolves network names against networks.yaml. The sim
// network is always available and needs no configuration.
type NetworkResolver struct {
	networks map[string]*Network
}

// NewNetworkResolver loads networks.yaml from the project root. A missing
// file leaves only the sim network available.
func NewNetworkResolver(projectRoot string) (*NetworkResolver, error) {
	r := &NetworkResolver{networks: make(map[string]*Network)}

	path := filepath.Join(projectRoot, NetworksFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", NetworksFileName, err)
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", NetworksFileName, err)
	}
	for name, n := range file.Networks {
		if n == nil {
			continue
		}
		n.Name = name
		r.networks[name] = n
	}
	return r, nil
}

// Resolve returns the configuration for a network name.
func (r *NetworkResolver) Resolve(name string) (*Network, error) {
	if name == SimNetworkName {
		return &Network{Name: SimNetworkName, ChainID: 31337}, nil
	}
	n, ok := r.networks[name]
	if !ok {
		return nil, fmt.Errorf("network %q not found in %s", name, NetworksFileName)
	}
	if n.RPCURL == "" {
		return nil, fmt.Errorf("network %q has no rpc url", name)
	}
	return n, nil
}

// Names returns all configured network names plus sim, sorted.
func (r *NetworkResolver) Names() []string {
	names := []string{SimNetworkName}
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
