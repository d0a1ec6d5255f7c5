package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplecpi/internal/anchor"
	"examplecpi/internal/config"
	"examplecpi/internal/examplecpi"
	"examplecpi/internal/logging"
	"examplecpi/internal/provider"
	"examplecpi/internal/store"
	"examplecpi/internal/validator"
)

const strongPass = "Correct-Horse-9"

func testSettings(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{Home: t.TempDir()}
	config.ApplyDefaults(cfg)
	cfg.Provider.PollInterval = 5 * time.Millisecond
	cfg.Provider.ConfirmTimeout = 2 * time.Second
	return cfg
}

func withLocalnet(t *testing.T, cfg *config.Config) (*validator.Ledger, solana.PrivateKey) {
	t.Helper()
	ledger := validator.NewLocalnet(examplecpi.ClusterFor("localnet"))
	srv := httptest.NewServer(validator.NewServer(ledger, nil))
	t.Cleanup(srv.Close)

	key := solana.NewWallet().PrivateKey
	ledger.Fund(key.PublicKey(), validator.LamportsPerSOL)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, store.WriteKeygenFile(path, key))

	cfg.Provider.URL = srv.URL
	cfg.Provider.Wallet = path
	return ledger, key
}

func TestNewWire_RequiresSettings(t *testing.T) {
	_, err := NewWire(Config{})
	assert.ErrorIs(t, err, ErrNoSettings)
}

func TestProvider_Errors(t *testing.T) {
	cfg := testSettings(t)
	w, err := NewWire(Config{Settings: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)

	_, err = w.Provider()
	assert.ErrorIs(t, err, provider.ErrProviderURLUnset)

	cfg.Provider.URL = "http://127.0.0.1:1"
	_, err = w.Provider()
	assert.ErrorIs(t, err, ErrNoWalletConfigured)

	cfg.Passphrase = strongPass
	_, err = w.Provider()
	assert.ErrorIs(t, err, store.ErrNoWallet)
}

func TestProvider_EncryptedWallet(t *testing.T) {
	cfg := testSettings(t)
	cfg.Provider.URL = "http://127.0.0.1:1"
	cfg.Passphrase = strongPass
	w, err := NewWire(Config{Settings: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)

	pub, _, err := w.Wallets.Generate(strongPass)
	require.NoError(t, err)

	p, err := w.Provider()
	require.NoError(t, err)
	assert.Equal(t, pub, p.Wallet())

	again, err := w.Provider()
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestProgram_InitializeIsRecorded(t *testing.T) {
	cfg := testSettings(t)
	withLocalnet(t, cfg)
	w, err := NewWire(Config{Settings: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)

	program, err := w.Program("ExampleCpi")
	require.NoError(t, err)
	assert.Equal(t, examplecpi.ProgramID, program.ID())

	sig, err := program.Method("initialize").RPC(context.Background())
	require.NoError(t, err)

	records, err := w.History.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, sig.String(), records[0].Signature)
	assert.Equal(t, examplecpi.InstructionInitialize, records[0].Instruction)
	assert.Equal(t, examplecpi.ProgramID.String(), records[0].ProgramID)
	assert.Equal(t, cfg.Provider.URL, records[0].Cluster)
	assert.NotEmpty(t, records[0].ID)
	assert.Empty(t, records[0].Err)
}

func TestProgram_FailedTransactionIsRecorded(t *testing.T) {
	cfg := testSettings(t)
	cfg.Provider.SkipPreflight = true
	_, admin := withLocalnet(t, cfg)
	w, err := NewWire(Config{Settings: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)

	client, err := w.ExampleCPI()
	require.NoError(t, err)
	_, err = client.Deposit(examplecpi.DepositAccounts{Admin: admin.PublicKey()}, 1).RPC(context.Background())
	require.Error(t, err)

	records, err := w.History.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, examplecpi.InstructionDeposit, records[0].Instruction)
	assert.NotEmpty(t, records[0].Err)
	assert.NotZero(t, records[0].Slot)
}

func TestProgram_PreflightFailureIsRecorded(t *testing.T) {
	cfg := testSettings(t)
	_, admin := withLocalnet(t, cfg)
	w, err := NewWire(Config{Settings: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)

	client, err := w.ExampleCPI()
	require.NoError(t, err)
	_, err = client.Deposit(examplecpi.DepositAccounts{Admin: admin.PublicKey()}, 1).RPC(context.Background())
	require.Error(t, err)

	records, err := w.History.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Signature)
	assert.Equal(t, examplecpi.InstructionDeposit, records[0].Instruction)
	assert.Contains(t, records[0].Err, "custom program error")
	assert.Zero(t, records[0].Slot)
}

func TestProgram_OutsideWorkspace(t *testing.T) {
	cfg := testSettings(t)
	withLocalnet(t, cfg)
	cfg.Workspace = t.TempDir()
	w, err := NewWire(Config{Settings: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)

	program, err := w.Program("example-cpi")
	require.NoError(t, err)
	assert.Equal(t, examplecpi.ProgramID, program.ID())

	_, err = w.Program("faucet")
	assert.ErrorIs(t, err, anchor.ErrNoWorkspace)
}

func TestCluster(t *testing.T) {
	cfg := testSettings(t)
	cfg.Provider.URL = "https://api.mainnet-beta.solana.com"
	w, err := NewWire(Config{Settings: cfg})
	require.NoError(t, err)
	assert.Equal(t, examplecpi.CypherProgramIDMainnet, w.Cluster().CypherProgramID)
}
