// Package config defines the examplecpi configuration, its defaults, and how
// it is loaded from a file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"examplecpi/internal/logging"
)

// ProviderConfig mirrors what an Anchor provider needs: where the cluster is,
// which wallet pays, and how long to wait for confirmation.
type ProviderConfig struct {
	URL                 string        `mapstructure:"url"`
	Wallet              string        `mapstructure:"wallet"`
	Commitment          string        `mapstructure:"commitment"`
	PreflightCommitment string        `mapstructure:"preflight_commitment"`
	SkipPreflight       bool          `mapstructure:"skip_preflight"`
	ConfirmTimeout      time.Duration `mapstructure:"confirm_timeout"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
}

// RPCConfig tunes the outbound JSON-RPC client.
type RPCConfig struct {
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Config is the root configuration.
type Config struct {
	// Home holds the encrypted wallet and the signature history.
	Home string `mapstructure:"home"`
	// Workspace is the directory searched (upwards) for Anchor.toml.
	Workspace string `mapstructure:"workspace"`
	// Passphrase unlocks the encrypted wallet in Home when no keygen file is set.
	Passphrase string `mapstructure:"passphrase"`

	Provider ProviderConfig `mapstructure:"provider"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Log      logging.Config `mapstructure:"log"`
}

var (
	// ErrInvalidCommitment is returned for commitments other than
	// processed, confirmed or finalized.
	ErrInvalidCommitment = errors.New("invalid commitment")
	// ErrInvalidURL is returned when the provider URL is not http(s).
	ErrInvalidURL = errors.New("invalid provider url")
)

func validCommitment(c string) bool {
	switch c {
	case "processed", "confirmed", "finalized":
		return true
	}
	return false
}

// Validate checks cross-field constraints. An empty provider URL is allowed
// here; commands that talk to a cluster require it when building the provider.
func (c *Config) Validate() error {
	if c.Provider.URL != "" {
		u, err := url.Parse(c.Provider.URL)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
		}
	}
	if !validCommitment(c.Provider.Commitment) {
		return fmt.Errorf("%w: %q", ErrInvalidCommitment, c.Provider.Commitment)
	}
	if !validCommitment(c.Provider.PreflightCommitment) {
		return fmt.Errorf("%w: preflight %q", ErrInvalidCommitment, c.Provider.PreflightCommitment)
	}
	if c.Provider.ConfirmTimeout <= 0 {
		return errors.New("provider.confirm_timeout must be positive")
	}
	if c.Provider.PollInterval <= 0 {
		return errors.New("provider.poll_interval must be positive")
	}
	if c.RPC.RateLimit < 0 {
		return errors.New("rpc.rate_limit must not be negative")
	}
	return nil
}
