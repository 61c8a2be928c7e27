// Package config loads process configuration for the fxadvisor binary from a YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/rates"
)

const envPrefix = "FXADVISOR"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Redis   RedisConfig   `mapstructure:"redis"   yaml:"redis"`
	Rates   RatesConfig   `mapstructure:"rates"   yaml:"rates"`
	Market  MarketConfig  `mapstructure:"market"  yaml:"market"`
	Policy  PolicyConfig  `mapstructure:"policy"  yaml:"policy"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"             yaml:"host"`
	Port           int           `mapstructure:"port"             yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"     yaml:"cors_origins"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	Burst          int           `mapstructure:"burst"            yaml:"burst"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"  yaml:"request_timeout"`
}

// RedisConfig enables the shared cache when Addr is set.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"       yaml:"addr"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

type RatesConfig struct {
	BaseURL         string        `mapstructure:"base_url"         yaml:"base_url"`
	RequestsPerSec  float64       `mapstructure:"requests_per_sec" yaml:"requests_per_sec"`
	Burst           int           `mapstructure:"burst"            yaml:"burst"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"        yaml:"cache_ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	WarmPairs       []string      `mapstructure:"warm_pairs"       yaml:"warm_pairs"`

	// Fallback is used when no live rate is available, keyed by pair ("USDCNY").
	Fallback map[string]float64 `mapstructure:"fallback" yaml:"fallback"`
}

// MarketConfig selects the market-condition signal. Seed 0 means the neutral signal.
type MarketConfig struct {
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// PolicyConfig holds the tables channel eligibility and fees are decided with.
type PolicyConfig struct {
	MajorCities         []string           `mapstructure:"major_cities"         yaml:"major_cities"`
	RestrictedTypes     []string           `mapstructure:"restricted_types"     yaml:"restricted_types"`
	PurposeAdjustments  map[string]float64 `mapstructure:"purpose_adjustments"  yaml:"purpose_adjustments"`
	SupportedCurrencies []string           `mapstructure:"supported_currencies" yaml:"supported_currencies"`
}

type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Level   string `mapstructure:"level"   yaml:"level"` // "debug", "info", "warn", "error"
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/fxadvisor.yaml
//  2. ~/.fxadvisor/fxadvisor.yaml
//  3. /etc/fxadvisor/fxadvisor.yaml
//
// Environment variables override config file values.
// Format: FXADVISOR_<SECTION>_<KEY>, e.g., FXADVISOR_REDIS_ADDR
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("fxadvisor")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fxadvisor"))
	v.AddConfigPath("/etc/fxadvisor")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.requests_per_sec", 20.0)
	v.SetDefault("server.burst", 40)
	v.SetDefault("server.request_timeout", 30*time.Second)

	// Redis (empty address keeps the cache in memory)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.key_prefix", "fxadvisor")

	// Rates
	v.SetDefault("rates.base_url", "https://api.exchangerate-api.com/v4/latest")
	v.SetDefault("rates.requests_per_sec", 1.0)
	v.SetDefault("rates.burst", 5)
	v.SetDefault("rates.timeout", 5*time.Second)
	v.SetDefault("rates.cache_ttl", 10*time.Minute)
	v.SetDefault("rates.refresh_interval", 5*time.Minute)
	v.SetDefault("rates.warm_pairs", []string{"USD/CNY", "EUR/CNY", "GBP/CNY", "JPY/CNY", "HKD/CNY"})

	fallback := make(map[string]interface{})
	for pair, r := range rates.DefaultFallbackTable().Rates {
		fallback[pair] = r
	}
	v.SetDefault("rates.fallback", fallback)

	v.SetDefault("market.seed", 0)

	// Policy
	policy := engine.DefaultPolicy()
	restricted := make([]string, 0, len(policy.Location.RestrictedTypes))
	for _, t := range policy.Location.RestrictedTypes {
		restricted = append(restricted, string(t))
	}
	v.SetDefault("policy.major_cities", policy.Location.MajorCities)
	v.SetDefault("policy.restricted_types", restricted)
	adjustments := make(map[string]interface{}, len(policy.PurposeAdjustments))
	for purpose, m := range policy.PurposeAdjustments {
		adjustments[purpose] = m
	}
	v.SetDefault("policy.purpose_adjustments", adjustments)
	v.SetDefault("policy.supported_currencies", policy.SupportedCurrencies)

	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.level", "info")
}

func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	case c.Rates.Timeout <= 0:
		return fmt.Errorf("rates.timeout must be positive")
	case c.Rates.CacheTTL <= 0:
		return fmt.Errorf("rates.cache_ttl must be positive")
	case c.Rates.RefreshInterval < 0:
		return fmt.Errorf("rates.refresh_interval must not be negative")
	case len(c.Policy.SupportedCurrencies) == 0:
		return fmt.Errorf("policy.supported_currencies must not be empty")
	}
	for purpose, m := range c.Policy.PurposeAdjustments {
		if m <= 0 {
			return fmt.Errorf("policy.purpose_adjustments.%s must be positive", purpose)
		}
	}
	for pair, r := range c.Rates.Fallback {
		if r <= 0 {
			return fmt.Errorf("rates.fallback.%s must be positive", pair)
		}
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
