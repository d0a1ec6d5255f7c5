package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix prefixes every examplecpi environment override.
const envPrefix = "EXAMPLECPI"

// Anchor's own environment variables. They take precedence over the
// EXAMPLECPI_ spellings so that `anchor test` style environments just work.
const (
	EnvProviderURL = "ANCHOR_PROVIDER_URL"
	EnvWallet      = "ANCHOR_WALLET"
)

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"home":       "home",
	"workspace":  "workspace",
	"passphrase": "passphrase",
	"url":        "provider.url",
	"wallet":     "provider.wallet",
	"commitment": "provider.commitment",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// newViper builds a viper instance with YAML config, EXAMPLECPI_ env
// overrides (provider.url -> EXAMPLECPI_PROVIDER_URL) and every known key
// registered so AutomaticEnv applies during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("provider.url", EnvProviderURL, envPrefix+"_PROVIDER_URL")
	_ = v.BindEnv("provider.wallet", EnvWallet, envPrefix+"_PROVIDER_WALLET")

	v.SetDefault("home", "")
	v.SetDefault("workspace", DefaultWorkspace)
	v.SetDefault("passphrase", "")
	v.SetDefault("provider.commitment", DefaultCommitment)
	v.SetDefault("provider.preflight_commitment", DefaultPreflightCommitment)
	v.SetDefault("provider.skip_preflight", false)
	v.SetDefault("provider.confirm_timeout", DefaultConfirmTimeout)
	v.SetDefault("provider.poll_interval", DefaultPollInterval)
	v.SetDefault("rpc.rate_limit", 0.0)
	v.SetDefault("rpc.burst", DefaultRPCBurst)
	v.SetDefault("rpc.timeout", DefaultRPCTimeout)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	return v
}

// Load reads the YAML file at path (skipped when empty), applies env and flag
// overrides, fills defaults and validates. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: bind flag %q: %w", name, err)
			}
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from the environment alone.
func LoadFromEnv() (*Config, error) {
	return Load("", nil)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
