package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	baoConfig, err := LoadBaoFile(projectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".bao"),
		Namespace:      v.GetString("namespace"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		TestRun:        v.GetBool("test_run"),
		DeployerKey:    v.GetString("deployer_key"),
		BaoConfig:      baoConfig,
	}

	ns := baoConfig.ForNamespace(cfg.Namespace)
	cfg.Version = firstNonEmpty(v.GetString("deploy_version"), ns.Version)
	cfg.SaltString = firstNonEmpty(v.GetString("salt_string"), ns.SaltString)

	if owner := firstNonEmpty(v.GetString("owner"), ns.Owner); owner != "" {
		if !common.IsHexAddress(owner) {
			return nil, fmt.Errorf("invalid owner address %q", owner)
		}
		cfg.Owner = common.HexToAddress(owner)
	}

	// Resolve network if specified
	if networkName := v.GetString("network"); networkName != "" {
		resolver, err := NewNetworkResolver(projectRoot)
		if err != nil {
			return nil, err
		}
		network, err := resolver.Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find bao.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		baoToml := filepath.Join(dir, BaoFileName)
		if _, err := os.Stat(baoToml); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding bao.toml
			return "", fmt.Errorf("not in a bao project (%s not found)", BaoFileName)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	// Load project-local .env before the environment is read
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))

	v := viper.New()

	// Set up config file
	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".bao"))

	// Set up environment variables
	v.SetEnvPrefix("BAO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("namespace", "default")
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Try to read config file (ignore error if not found)
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		err := v.BindPFlag(f.Name, f)
		if err != nil {
			panic(err)
		}
	})

	return v
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}
