package app

import (
	"examplecpi/internal/config"
	"examplecpi/internal/domain"
	"examplecpi/internal/logging"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Settings *config.Config
	Logger   logging.Logger // optional; defaults to logging.Default()
	// RPC overrides the client built from Settings.Provider.URL.
	RPC domain.RPCClient
}
