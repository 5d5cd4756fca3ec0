package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ClientConfig configures tribectl and tribe-tui.
type ClientConfig struct {
	RPCURL              string        `yaml:"rpc_url"`
	ChainID             int64         `yaml:"chain_id"`
	FactoryAddress      string        `yaml:"factory_address"`
	BenefitsURL         string        `yaml:"benefits_url"`
	PrivateKey          string        `yaml:"private_key"`
	RefreshDelay        time.Duration `yaml:"refresh_delay"`
	PollInterval        time.Duration `yaml:"poll_interval"`
	ReceiptPollInterval time.Duration `yaml:"receipt_poll_interval"`
	ReceiptTimeout      time.Duration `yaml:"receipt_timeout"`
}

// DefaultClientConfig 客户端默认配置
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RPCURL:              "https://sepolia.base.org",
		ChainID:             84532,
		BenefitsURL:         "http://localhost:4000",
		RefreshDelay:        time.Second,
		PollInterval:        10 * time.Second,
		ReceiptPollInterval: time.Second,
		ReceiptTimeout:      2 * time.Minute,
	}
}

// LoadClientConfig reads an optional YAML file and applies TRIBE_*
// environment overrides. An empty path skips the file.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read client config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse client config %s: %w", path, err)
		}
	}

	overrides := map[string]*string{
		"TRIBE_RPC_URL":         &cfg.RPCURL,
		"TRIBE_FACTORY_ADDRESS": &cfg.FactoryAddress,
		"TRIBE_BENEFITS_URL":    &cfg.BenefitsURL,
		"TRIBE_PRIVATE_KEY":     &cfg.PrivateKey,
	}
	for key, dst := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("TRIBE_CHAIN_ID"); v != "" {
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok || !n.IsInt64() {
			return cfg, fmt.Errorf("TRIBE_CHAIN_ID: invalid value %q", v)
		}
		cfg.ChainID = n.Int64()
	}
	return cfg, cfg.Validate()
}

// Validate checks addresses and intervals.
func (c ClientConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("chain_id must be positive")
	}
	if c.FactoryAddress != "" && !common.IsHexAddress(c.FactoryAddress) {
		return fmt.Errorf("factory_address is not a valid address: %q", c.FactoryAddress)
	}
	if c.ReceiptPollInterval <= 0 || c.ReceiptTimeout <= 0 {
		return fmt.Errorf("receipt_poll_interval and receipt_timeout must be positive")
	}
	return nil
}

// ChainIDBig returns the chain id for transaction signing.
func (c ClientConfig) ChainIDBig() *big.Int { return big.NewInt(c.ChainID) }

// Factory returns the configured factory address, if any.
func (c ClientConfig) Factory() (common.Address, bool) {
	if c.FactoryAddress == "" {
		return common.Address{}, false
	}
	return common.HexToAddress(c.FactoryAddress), true
}
