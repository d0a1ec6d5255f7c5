package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultCommitment          = "confirmed"
	DefaultPreflightCommitment = "processed"
	DefaultConfirmTimeout      = 30 * time.Second
	DefaultPollInterval        = 400 * time.Millisecond

	DefaultRPCTimeout = 30 * time.Second
	DefaultRPCBurst   = 1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultWorkspace = "."
	homeDirName      = ".examplecpi"
)

// DefaultHome returns ~/.examplecpi, or a relative .examplecpi when the user
// home cannot be determined.
func DefaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return homeDirName
	}
	return filepath.Join(dir, homeDirName)
}

// ApplyDefaults fills zero-value fields. Explicit values always win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Home == "" {
		cfg.Home = DefaultHome()
	}
	if cfg.Workspace == "" {
		cfg.Workspace = DefaultWorkspace
	}

	if cfg.Provider.Commitment == "" {
		cfg.Provider.Commitment = DefaultCommitment
	}
	if cfg.Provider.PreflightCommitment == "" {
		cfg.Provider.PreflightCommitment = DefaultPreflightCommitment
	}
	if cfg.Provider.ConfirmTimeout == 0 {
		cfg.Provider.ConfirmTimeout = DefaultConfirmTimeout
	}
	if cfg.Provider.PollInterval == 0 {
		cfg.Provider.PollInterval = DefaultPollInterval
	}

	if cfg.RPC.Timeout == 0 {
		cfg.RPC.Timeout = DefaultRPCTimeout
	}
	if cfg.RPC.Burst == 0 {
		cfg.RPC.Burst = DefaultRPCBurst
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
