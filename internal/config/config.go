package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to reach the election contract.
type Config struct {
	RPCURL          string
	ContractAddress string
	KeystorePath    string
	GasLimit        uint64
	MetricsAddr     string
	ResyncRate      float64
	ResyncBurst     int
	DialTimeout     time.Duration
}

func Default() Config {
	return Config{
		RPCURL:      "http://localhost:7545",
		GasLimit:    200000,
		ResyncRate:  2,
		ResyncBurst: 4,
		DialTimeout: 10 * time.Second,
	}
}

type FileConfig struct {
	Ledger  LedgerSection  `yaml:"ledger"`
	Wallet  WalletSection  `yaml:"wallet"`
	Sync    SyncSection    `yaml:"sync"`
	Metrics MetricsSection `yaml:"metrics"`
}

type LedgerSection struct {
	RPCURL          string        `yaml:"rpcUrl"`
	ContractAddress string        `yaml:"contractAddress"`
	GasLimit        uint64        `yaml:"gasLimit"`
	DialTimeout     time.Duration `yaml:"dialTimeout"`
}

type WalletSection struct {
	KeystorePath string `yaml:"keystorePath"`
}

type SyncSection struct {
	ResyncRate  float64 `yaml:"resyncRate"`
	ResyncBurst int     `yaml:"resyncBurst"`
}

type MetricsSection struct {
	Addr string `yaml:"addr"`
}

// LoadFromPath reads config from the given path, or from the default
// candidates when the path is empty. Missing or unparsable files fall
// back to defaults; env overrides always apply last.
func LoadFromPath(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"ballotdesk.yaml",
			"configs/ballotdesk.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merged := cfg
		Merge(&merged, parsed)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *Config, src FileConfig) {
	if src.Ledger.RPCURL != "" {
		dst.RPCURL = src.Ledger.RPCURL
	}
	if src.Ledger.ContractAddress != "" {
		dst.ContractAddress = src.Ledger.ContractAddress
	}
	if src.Ledger.GasLimit != 0 {
		dst.GasLimit = src.Ledger.GasLimit
	}
	if src.Ledger.DialTimeout != 0 {
		dst.DialTimeout = src.Ledger.DialTimeout
	}
	if src.Wallet.KeystorePath != "" {
		dst.KeystorePath = src.Wallet.KeystorePath
	}
	if src.Sync.ResyncRate != 0 {
		dst.ResyncRate = src.Sync.ResyncRate
	}
	if src.Sync.ResyncBurst != 0 {
		dst.ResyncBurst = src.Sync.ResyncBurst
	}
	if src.Metrics.Addr != "" {
		dst.MetricsAddr = src.Metrics.Addr
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if url := strings.TrimSpace(os.Getenv("BALLOTDESK_RPC_URL")); url != "" {
		cfg.RPCURL = url
	}
	if addr := strings.TrimSpace(os.Getenv("BALLOTDESK_CONTRACT_ADDRESS")); addr != "" {
		cfg.ContractAddress = addr
	}
	if path := strings.TrimSpace(os.Getenv("BALLOTDESK_KEYSTORE")); path != "" {
		cfg.KeystorePath = path
	}
}
