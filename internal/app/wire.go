package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
	"examplecpi/internal/config"
	"examplecpi/internal/domain"
	"examplecpi/internal/examplecpi"
	"examplecpi/internal/logging"
	"examplecpi/internal/provider"
	"examplecpi/internal/services/wallet"
	"examplecpi/internal/store"
)

var (
	// ErrNoWalletConfigured is returned when neither a keygen file nor a
	// passphrase for the encrypted wallet is available.
	ErrNoWalletConfigured = errors.New("no wallet: set --wallet/ANCHOR_WALLET or --passphrase")
	// ErrNoSettings is returned by NewWire without Settings.
	ErrNoSettings = errors.New("app: settings are required")
)

// Wire bundles stores, services and lazily built cluster clients.
type Wire struct {
	Settings *config.Config
	Log      logging.Logger
	Wallets  domain.WalletService
	History  domain.HistoryStore

	rpc      domain.RPCClient
	provider *provider.Provider
	sender   domain.TxSender
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if cfg.Settings == nil {
		return nil, ErrNoSettings
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}
	if err := os.MkdirAll(cfg.Settings.Home, 0o700); err != nil {
		return nil, fmt.Errorf("create home %s: %w", cfg.Settings.Home, err)
	}

	return &Wire{
		Settings: cfg.Settings,
		Log:      log,
		Wallets:  wallet.New(store.NewWalletFileStore(cfg.Settings.Home)),
		History:  store.NewHistoryFileStore(cfg.Settings.Home),
		rpc:      cfg.RPC,
	}, nil
}

// Cluster returns the cypher deployment matching the provider URL.
func (w *Wire) Cluster() examplecpi.Cluster {
	return examplecpi.ClusterFor(w.Settings.Provider.URL)
}

// Provider returns the provider, building it on first use. The wallet is the
// keygen file in Settings.Provider.Wallet or, failing that, the encrypted
// wallet in Home unlocked with Settings.Passphrase.
func (w *Wire) Provider() (*provider.Provider, error) {
	if w.provider != nil {
		return w.provider, nil
	}
	s := w.Settings
	if s.Provider.URL == "" {
		return nil, provider.ErrProviderURLUnset
	}
	key, err := w.loadWallet()
	if err != nil {
		return nil, err
	}
	client := w.rpc
	if client == nil {
		client = provider.NewRPC(s.Provider.URL, s.RPC)
	}
	w.provider = provider.New(client, key, provider.OptionsFromConfig(s.Provider, w.Log))
	w.sender = &historySender{next: w.provider, history: w.History, cluster: s.Provider.URL, log: w.Log}
	w.Log.Debug("provider ready",
		logging.String("url", s.Provider.URL),
		logging.Stringer("wallet", key.PublicKey()),
	)
	return w.provider, nil
}

func (w *Wire) loadWallet() (solana.PrivateKey, error) {
	s := w.Settings
	switch {
	case s.Provider.Wallet != "":
		return store.ReadKeygenFile(s.Provider.Wallet)
	case s.Passphrase != "":
		return w.Wallets.Load(s.Passphrase)
	}
	return nil, ErrNoWalletConfigured
}

// Sender returns the history-recording transaction sender.
func (w *Wire) Sender() (domain.TxSender, error) {
	if _, err := w.Provider(); err != nil {
		return nil, err
	}
	return w.sender, nil
}

// Workspace loads the Anchor workspace around Settings.Workspace.
func (w *Wire) Workspace() (*anchor.Workspace, error) {
	return anchor.LoadWorkspace(w.Settings.Workspace)
}

// Program resolves name in the workspace and binds it to the sender. Outside
// a workspace, example_cpi resolves to its well-known address.
func (w *Wire) Program(name string) (*anchor.Program, error) {
	sender, err := w.Sender()
	if err != nil {
		return nil, err
	}
	spec, err := w.programSpec(name)
	if err != nil {
		return nil, err
	}
	return anchor.NewProgram(spec, sender), nil
}

func (w *Wire) programSpec(name string) (anchor.ProgramSpec, error) {
	ws, err := w.Workspace()
	if err == nil {
		return ws.Program(name)
	}
	if errors.Is(err, anchor.ErrNoWorkspace) && anchor.SameProgramName(name, examplecpi.ProgramName) {
		w.Log.Debug("no workspace, using built-in program id", logging.String("program", name))
		return anchor.ProgramSpec{Name: examplecpi.ProgramName, ID: examplecpi.ProgramID}, nil
	}
	return anchor.ProgramSpec{}, err
}

// ExampleCPI returns the typed example-cpi client.
func (w *Wire) ExampleCPI() (*examplecpi.Client, error) {
	program, err := w.Program(examplecpi.ProgramName)
	if err != nil {
		return nil, err
	}
	return examplecpi.New(program), nil
}
