// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	NodeURL             string   `mapstructure:"node_url"`
	FallbackNodeURLs    []string `mapstructure:"fallback_node_urls"`
	RouterAddress       string   `mapstructure:"router_address"` // empty selects the mainnet PancakeSwap router
	Workers             int      `mapstructure:"workers"`
	Retries             int      `mapstructure:"retries"`
	RequestTimeoutMs    int      `mapstructure:"request_timeout_ms"`
	ConfirmTimeoutMs    int      `mapstructure:"confirm_timeout_ms"`
	WaitForConfirmation bool     `mapstructure:"wait_for_confirmation"`
	MaxGasAmount        uint64   `mapstructure:"max_gas_amount"`
	GasUnitPrice        uint64   `mapstructure:"gas_unit_price"`
	TxnExpirationSec    int      `mapstructure:"txn_expiration_sec"`
	TestMode            bool     `mapstructure:"test_mode"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	TasksFile    string `mapstructure:"tasks_file"`
	WalletsFile  string `mapstructure:"wallets_file"`
	TokensFile   string `mapstructure:"tokens_file"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
	PostgresURL  string `mapstructure:"postgres_url"`
	ExportDir    string `mapstructure:"export_dir"`
	ExportFormat string `mapstructure:"export_format"`

	License       string `mapstructure:"license"`
	KeygenAccount string `mapstructure:"keygen_account"`
	KeygenProduct string `mapstructure:"keygen_product"`
	KeygenToken   string `mapstructure:"keygen_token"`
}

const (
	DefaultWorkers          = 5
	DefaultRetries          = 3
	DefaultRequestTimeoutMs = 10_000
	DefaultConfirmTimeoutMs = 30_000
	DefaultMaxGasAmount     = 10_000
	DefaultGasUnitPrice     = 100
	DefaultTxnExpirationSec = 600
)

// EnvPrefix prefixes environment overrides, e.g. APTOS_BOT_NODE_URL.
const EnvPrefix = "APTOS_BOT"

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"workers":               DefaultWorkers,
		"retries":               DefaultRetries,
		"request_timeout_ms":    DefaultRequestTimeoutMs,
		"confirm_timeout_ms":    DefaultConfirmTimeoutMs,
		"wait_for_confirmation": true,
		"max_gas_amount":        DefaultMaxGasAmount,
		"gas_unit_price":        DefaultGasUnitPrice,
		"txn_expiration_sec":    DefaultTxnExpirationSec,
		"log_file":              "aptos-bot.log",
		"tasks_file":            "configs/tasks.yaml",
		"wallets_file":          "configs/wallets.yaml",
		"export_format":         "csv",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadConfig reads the config file at path, applies APTOS_BOT_* environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// AutomaticEnv does not split lists
	if raw := v.GetString("fallback_node_urls"); raw != "" && len(cfg.FallbackNodeURLs) <= 1 {
		cfg.FallbackNodeURLs = splitList(raw)
	}

	return &cfg, cfg.Validate()
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if clean := strings.TrimSpace(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// Validate rejects configurations the bot cannot run with.
func (c *Config) Validate() error {
	if c.NodeURL == "" {
		return errors.New("node_url is required")
	}
	for _, u := range c.NodeURLs() {
		if err := validateHTTPURL(u); err != nil {
			return fmt.Errorf("invalid node URL %q: %w", u, err)
		}
	}
	if c.RouterAddress != "" && !strings.HasPrefix(c.RouterAddress, "0x") {
		return errors.New("router_address must be a 0x prefixed account address")
	}
	if err := c.validateNumericParams(); err != nil {
		return err
	}
	switch c.ExportFormat {
	case "", "csv", "json":
	default:
		return fmt.Errorf("unsupported export_format %q", c.ExportFormat)
	}
	if c.KeygenAccount != "" && c.License == "" {
		return errors.New("license is required when keygen_account is set")
	}
	return nil
}

func (c *Config) validateNumericParams() error {
	if c.Workers < 0 {
		return errors.New("invalid workers count")
	}
	if c.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if c.RequestTimeoutMs < 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if c.ConfirmTimeoutMs < 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if c.TxnExpirationSec < 0 {
		return errors.New("invalid txn_expiration_sec")
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// NodeURLs returns the primary node followed by the fallbacks.
func (c *Config) NodeURLs() []string {
	urls := make([]string, 0, 1+len(c.FallbackNodeURLs))
	urls = append(urls, c.NodeURL)
	return append(urls, c.FallbackNodeURLs...)
}

// RequestTimeout is the per-call node timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// ConfirmTimeout bounds the wait for a transaction to be committed.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutMs) * time.Millisecond
}

// TxnExpiration is how long a signed transaction stays valid.
func (c *Config) TxnExpiration() time.Duration {
	return time.Duration(c.TxnExpirationSec) * time.Second
}
