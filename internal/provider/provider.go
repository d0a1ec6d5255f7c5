package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"examplecpi/internal/config"
	"examplecpi/internal/domain"
	"examplecpi/internal/logging"
	"examplecpi/internal/store"
)

// Options control how transactions are submitted and confirmed.
type Options struct {
	// Commitment is the level SendAndConfirm waits for.
	Commitment rpc.CommitmentType
	// PreflightCommitment is used for simulation and the blockhash.
	PreflightCommitment rpc.CommitmentType
	SkipPreflight       bool
	ConfirmTimeout      time.Duration
	PollInterval        time.Duration

	// Logger defaults to a no-op logger.
	Logger logging.Logger
}

// DefaultOptions mirrors the Anchor client defaults.
func DefaultOptions() Options {
	return Options{
		Commitment:          rpc.CommitmentConfirmed,
		PreflightCommitment: rpc.CommitmentProcessed,
		ConfirmTimeout:      config.DefaultConfirmTimeout,
		PollInterval:        config.DefaultPollInterval,
	}
}

// OptionsFromConfig converts the provider section of the configuration.
func OptionsFromConfig(c config.ProviderConfig, log logging.Logger) Options {
	return Options{
		Commitment:          rpc.CommitmentType(c.Commitment),
		PreflightCommitment: rpc.CommitmentType(c.PreflightCommitment),
		SkipPreflight:       c.SkipPreflight,
		ConfirmTimeout:      c.ConfirmTimeout,
		PollInterval:        c.PollInterval,
		Logger:              log,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.Commitment == "" {
		o.Commitment = d.Commitment
	}
	if o.PreflightCommitment == "" {
		o.PreflightCommitment = d.PreflightCommitment
	}
	if o.ConfirmTimeout <= 0 {
		o.ConfirmTimeout = d.ConfirmTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = d.PollInterval
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
}

// Provider is an RPC connection plus the wallet that pays for and signs
// transactions.
type Provider struct {
	rpc    domain.RPCClient
	wallet solana.PrivateKey
	opts   Options
	log    logging.Logger
}

// New returns a Provider. Zero fields of opts take their defaults.
func New(client domain.RPCClient, wallet solana.PrivateKey, opts Options) *Provider {
	opts.applyDefaults()
	return &Provider{
		rpc:    client,
		wallet: wallet,
		opts:   opts,
		log:    opts.Logger.Named("provider"),
	}
}

// FromEnv builds a Provider from ANCHOR_PROVIDER_URL, ANCHOR_WALLET and the
// EXAMPLECPI_ overrides, logging to the process default logger.
func FromEnv() (*Provider, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, logging.Default())
}

// FromConfig builds a Provider whose wallet is the keygen file at
// cfg.Provider.Wallet.
func FromConfig(cfg *config.Config, log logging.Logger) (*Provider, error) {
	if cfg.Provider.URL == "" {
		return nil, ErrProviderURLUnset
	}
	if cfg.Provider.Wallet == "" {
		return nil, ErrWalletUnset
	}
	key, err := store.ReadKeygenFile(cfg.Provider.Wallet)
	if err != nil {
		return nil, err
	}
	return New(NewRPC(cfg.Provider.URL, cfg.RPC), key, OptionsFromConfig(cfg.Provider, log)), nil
}

// NewRPC returns a JSON-RPC client for url with the timeout and rate limit
// of c applied.
func NewRPC(url string, c config.RPCConfig) domain.RPCClient {
	httpClient := &http.Client{Timeout: c.Timeout}
	client := rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
		HTTPClient: httpClient,
	}))
	return RateLimited(client, c.RateLimit, c.Burst)
}

// Wallet returns the fee payer address.
func (p *Provider) Wallet() solana.PublicKey { return p.wallet.PublicKey() }

// RPC returns the underlying client.
func (p *Provider) RPC() domain.RPCClient { return p.rpc }

// Options returns the effective options.
func (p *Provider) Options() Options { return p.opts }

// SendAndConfirm builds a transaction from instructions with the wallet as
// fee payer, signs it with the wallet and signers, submits it and waits
// until it reaches the configured commitment.
func (p *Provider) SendAndConfirm(
	ctx context.Context,
	instructions []solana.Instruction,
	signers ...solana.PrivateKey,
) (solana.Signature, error) {
	bh, err := p.rpc.GetLatestBlockhash(ctx, p.opts.PreflightCommitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	if bh == nil || bh.Value == nil {
		return solana.Signature{}, ErrNoBlockhash
	}

	tx, err := solana.NewTransaction(
		instructions,
		bh.Value.Blockhash,
		solana.TransactionPayer(p.wallet.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	keys := append([]solana.PrivateKey{p.wallet}, signers...)
	if _, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		for i := range keys {
			if keys[i].PublicKey().Equals(pub) {
				return &keys[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	p.log.Debug("sending transaction",
		logging.Int("instructions", len(instructions)),
		logging.Stringer("blockhash", bh.Value.Blockhash),
	)
	sig, err := p.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       p.opts.SkipPreflight,
		PreflightCommitment: p.opts.PreflightCommitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	if err := p.Confirm(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// Confirm polls the status of sig until it reaches the configured
// commitment, fails, or the confirm timeout elapses.
func (p *Provider) Confirm(ctx context.Context, sig solana.Signature) error {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, p.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	target := domain.Commitment(p.opts.Commitment).Rank()
	for {
		res, err := p.rpc.GetSignatureStatuses(cctx, false, sig)
		switch {
		case err == nil && res != nil && len(res.Value) > 0 && res.Value[0] != nil:
			st := res.Value[0]
			if st.Err != nil {
				p.log.Warn("transaction failed", logging.Stringer("signature", sig), logging.Uint64("slot", st.Slot))
				return &TxError{Signature: sig, Slot: st.Slot, Err: st.Err}
			}
			if statusRank(st) >= target {
				p.log.Info("transaction confirmed",
					logging.Stringer("signature", sig),
					logging.Uint64("slot", st.Slot),
					logging.Duration("elapsed", time.Since(start)),
				)
				return nil
			}
		case err != nil && !errors.Is(err, rpc.ErrNotFound) && cctx.Err() == nil:
			return fmt.Errorf("get signature status: %w", err)
		}

		select {
		case <-cctx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s after %s", ErrConfirmTimeout, sig, p.opts.ConfirmTimeout)
		case <-ticker.C:
		}
	}
}

// statusRank treats a status without confirmationStatus and without a
// confirmation count as rooted.
func statusRank(st *rpc.SignatureStatusesResult) int {
	if st.ConfirmationStatus == "" {
		if st.Confirmations == nil {
			return domain.CommitmentFinalized.Rank()
		}
		return domain.CommitmentProcessed.Rank()
	}
	return domain.Commitment(st.ConfirmationStatus).Rank()
}

// Balance returns the wallet balance in lamports.
func (p *Provider) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := p.rpc.GetBalance(ctx, account, p.opts.Commitment)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return res.Value, nil
}

// Airdrop requests lamports for account and waits for the airdrop to confirm.
func (p *Provider) Airdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := p.rpc.RequestAirdrop(ctx, account, lamports, p.opts.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("request airdrop: %w", err)
	}
	return sig, p.Confirm(ctx, sig)
}

var _ domain.TxSender = (*Provider)(nil)
