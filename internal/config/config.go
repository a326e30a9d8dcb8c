// Package config loads node and genesis configuration from YAML, with
// ${VAR_NAME} environment variable substitution applied before parsing —
// the same convention the rest of this codebase's config loading uses.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// NodeConfig configures one validator process: its identity, networking,
// storage backend, and consensus timing.
type NodeConfig struct {
	Environment string `yaml:"environment"`

	Chain     ChainSettings     `yaml:"chain"`
	Validator ValidatorSettings `yaml:"validator"`
	Storage   StorageSettings   `yaml:"storage"`
	Mempool   MempoolSettings   `yaml:"mempool"`
	Network   NetworkSettings   `yaml:"network"`
	Metrics   MetricsSettings   `yaml:"metrics"`
	Logging   LoggingSettings   `yaml:"logging"`
}

type ChainSettings struct {
	ChainID      string `yaml:"chain_id"`
	GenesisPath  string `yaml:"genesis_path"`
	BlockTimeMs  int    `yaml:"block_time_ms"`
	MaxTxsPerBlk int    `yaml:"max_txs_per_block"`
}

type ValidatorSettings struct {
	KeyPath string `yaml:"key_path"`
}

type StorageSettings struct {
	Backend     string `yaml:"backend"` // "memdb", "goleveldb", or "postgres"
	DataDir     string `yaml:"data_dir"`
	DatabaseURL string `yaml:"database_url"`
}

type MempoolSettings struct {
	MaxSize         int    `yaml:"max_size"`
	MaxPerSender    int    `yaml:"max_per_sender"`
	ExpiryThreshold uint64 `yaml:"expiry_threshold"`
	Order           string `yaml:"order"` // "fee_rate" or "fifo"
}

type NetworkSettings struct {
	ListenAddr string   `yaml:"listen_addr"`
	Peers      []string `yaml:"peers"`
	DialTimeoutMs int   `yaml:"dial_timeout_ms"`
}

type MetricsSettings struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}

// Load reads and parses a NodeConfig from path, substituting
// ${VAR_NAME} environment references before parsing, then applies
// defaults for anything left unset.
func Load(path string) (*NodeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg NodeConfig
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *NodeConfig) applyDefaults() {
	if c.Chain.BlockTimeMs == 0 {
		c.Chain.BlockTimeMs = 2000
	}
	if c.Chain.MaxTxsPerBlk == 0 {
		c.Chain.MaxTxsPerBlk = 500
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "goleveldb"
	}
	if c.Mempool.MaxSize == 0 {
		c.Mempool.MaxSize = 10_000
	}
	if c.Mempool.MaxPerSender == 0 {
		c.Mempool.MaxPerSender = 64
	}
	if c.Mempool.Order == "" {
		c.Mempool.Order = "fee_rate"
	}
	if c.Network.DialTimeoutMs == 0 {
		c.Network.DialTimeoutMs = 5000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// BlockInterval returns the configured block time as a duration.
func (c *ChainSettings) BlockInterval() time.Duration {
	return time.Duration(c.BlockTimeMs) * time.Millisecond
}
