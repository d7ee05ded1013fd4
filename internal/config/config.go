package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
	"github.com/sol-strategies/solana-validator-dashboard/internal/hooks"
	"github.com/sol-strategies/solana-validator-dashboard/internal/metrics"
	"github.com/sol-strategies/solana-validator-dashboard/internal/monitor"
	"github.com/sol-strategies/solana-validator-dashboard/internal/solana"
	"github.com/sol-strategies/solana-validator-dashboard/internal/utils"
	pkgconstants "github.com/sol-strategies/solana-validator-dashboard/pkg/constants"
	"github.com/spf13/viper"
)

const (
	// DefaultCluster is the cluster used when neither rpc_url nor cluster is set
	DefaultCluster = "mainnet-beta"

	// DefaultAuthorityKeyfile is the default solana keygen file signing dashboard transactions
	DefaultAuthorityKeyfile = "~/.config/solana/id.json"
)

var (
	// DefaultConfigPath is the default path to the config file
	DefaultConfigPath = filepath.Join("~", pkgconstants.AppName, pkgconstants.AppName+".yaml")

	// DotEnvFiles are loaded in order before the config, earlier files win
	DotEnvFiles = []string{".env.local", ".env"}
)

// Monitor is the monitor section of the config
type Monitor struct {
	ValidatorPubkey      string           `mapstructure:"validator_pubkey"`
	Interval             time.Duration    `mapstructure:"interval"`
	UptimeAlertThreshold float64          `mapstructure:"uptime_alert_threshold"`
	Hooks                hooks.AlertHooks `mapstructure:"hooks"`
}

// Metrics is the metrics section of the config
type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Dashboard is the dashboard program section of the config
type Dashboard struct {
	ProgramID        string        `mapstructure:"program_id"`
	AuthorityKeyfile string        `mapstructure:"authority_keyfile"`
	Address          string        `mapstructure:"address"`
	ConfirmTimeout   time.Duration `mapstructure:"confirm_timeout"`
}

// SolanaValidatorDashboard is the configuration for the program
type SolanaValidatorDashboard struct {
	RPCURL    string    `mapstructure:"rpc_url"`
	Cluster   string    `mapstructure:"cluster"`
	Monitor   Monitor   `mapstructure:"monitor"`
	Metrics   Metrics   `mapstructure:"metrics"`
	Dashboard Dashboard `mapstructure:"dashboard"`
}

// LoadDotEnv loads environment variables from the given files, skipping missing ones. Variables already set
// in the environment are never overridden
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if !utils.FileExists(file) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
		log.Debug().Str("file", file).Msg("loaded env file")
	}
	return nil
}

// NewFromFile creates a new SolanaValidatorDashboard configuration from a config file and the environment
func NewFromFile(configPath string) (s *SolanaValidatorDashboard, err error) {
	s = &SolanaValidatorDashboard{}

	err = s.LoadFromConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	return
}

// LoadFromConfigFile loads the config from a config file and the environment. An explicit configPath must
// exist, the default one is optional
func (s *SolanaValidatorDashboard) LoadFromConfigFile(configPath string) (err error) {
	logger := log.With().Str("component", "config").Logger()
	v := viper.New()

	loadConfigPath := DefaultConfigPath
	if configPath != "" {
		loadConfigPath = configPath
	}

	loadConfigPath, err = utils.ResolvePath(loadConfigPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	// Set defaults
	v.SetDefault("rpc_url", "")
	v.SetDefault("cluster", DefaultCluster)
	v.SetDefault("monitor.validator_pubkey", "")
	v.SetDefault("monitor.interval", constants.DefaultMonitorInterval)
	v.SetDefault("monitor.uptime_alert_threshold", constants.DefaultUptimeAlertThreshold)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", metrics.DefaultAddress)
	v.SetDefault("dashboard.program_id", constants.DefaultDashboardProgramID)
	v.SetDefault("dashboard.authority_keyfile", DefaultAuthorityKeyfile)
	v.SetDefault("dashboard.address", "")
	v.SetDefault("dashboard.confirm_timeout", solana.DefaultConfirmTimeout)

	// Environment: SOLANA_VALIDATOR_DASHBOARD_MONITOR_INTERVAL etc, plus the well known solana names
	v.SetEnvPrefix(strings.TrimSuffix(pkgconstants.AppEnvVarPrefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err = v.BindEnv("rpc_url", constants.EnvVarRPCURL); err != nil {
		return fmt.Errorf("failed to bind %s: %w", constants.EnvVarRPCURL, err)
	}
	if err = v.BindEnv("monitor.validator_pubkey", constants.EnvVarValidatorPubkey); err != nil {
		return fmt.Errorf("failed to bind %s: %w", constants.EnvVarValidatorPubkey, err)
	}

	// Read config file
	switch {
	case utils.FileExists(loadConfigPath):
		v.SetConfigFile(loadConfigPath)
		logger.Debug().Str("config_file", loadConfigPath).Msg("loading")
		if err = v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", loadConfigPath, err)
		}
	case configPath != "":
		return fmt.Errorf("config file not found: %s", loadConfigPath)
	default:
		logger.Debug().Str("config_file", loadConfigPath).Msg("default config file not found, using defaults and environment")
	}

	// Unmarshal into the full config structure
	return v.Unmarshal(s)
}

// ResolvedRPCURL returns rpc_url, falling back to the rpc endpoint of the configured cluster
func (s *SolanaValidatorDashboard) ResolvedRPCURL() string {
	if s.RPCURL != "" {
		return s.RPCURL
	}
	if cluster, ok := constants.SolanaClusters[s.Cluster]; ok {
		return cluster.RPC
	}
	return constants.DefaultRPCURL
}

// Validate checks the values shared by every command
func (s *SolanaValidatorDashboard) Validate() error {
	var errs []error
	if s.RPCURL == "" {
		if err := utils.ValidateCluster(s.Cluster); err != nil {
			errs = append(errs, err)
		}
	}
	if !utils.IsValidRPCURL(s.ResolvedRPCURL()) {
		errs = append(errs, fmt.Errorf("invalid rpc_url: %s", s.ResolvedRPCURL()))
	}
	if s.Metrics.Enabled && !utils.IsValidURLWithPort(s.Metrics.Address) {
		errs = append(errs, fmt.Errorf("invalid metrics.address: %s", s.Metrics.Address))
	}
	return errors.Join(errs...)
}

// MonitorConfig returns the monitor configuration
func (s *SolanaValidatorDashboard) MonitorConfig() monitor.Config {
	return monitor.Config{
		RPCURL:               s.ResolvedRPCURL(),
		ValidatorPubkey:      s.Monitor.ValidatorPubkey,
		Interval:             s.Monitor.Interval,
		UptimeAlertThreshold: s.Monitor.UptimeAlertThreshold,
	}
}
