package provider

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"

	"examplecpi/internal/domain"
)

// rateLimitedRPC waits on a token bucket before every call.
type rateLimitedRPC struct {
	next    domain.RPCClient
	limiter *rate.Limiter
}

// RateLimited wraps next so that it issues at most rps requests per second
// with the given burst. rps <= 0 returns next unchanged.
func RateLimited(next domain.RPCClient, rps float64, burst int) domain.RPCClient {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedRPC{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimitedRPC) GetLatestBlockhash(
	ctx context.Context,
	commitment rpc.CommitmentType,
) (*rpc.GetLatestBlockhashResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.GetLatestBlockhash(ctx, commitment)
}

func (r *rateLimitedRPC) SendTransactionWithOpts(
	ctx context.Context,
	tx *solana.Transaction,
	opts rpc.TransactionOpts,
) (solana.Signature, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	return r.next.SendTransactionWithOpts(ctx, tx, opts)
}

func (r *rateLimitedRPC) GetSignatureStatuses(
	ctx context.Context,
	searchTransactionHistory bool,
	signatures ...solana.Signature,
) (*rpc.GetSignatureStatusesResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.GetSignatureStatuses(ctx, searchTransactionHistory, signatures...)
}

func (r *rateLimitedRPC) GetAccountInfo(
	ctx context.Context,
	account solana.PublicKey,
) (*rpc.GetAccountInfoResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.GetAccountInfo(ctx, account)
}

func (r *rateLimitedRPC) GetBalance(
	ctx context.Context,
	account solana.PublicKey,
	commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.GetBalance(ctx, account, commitment)
}

func (r *rateLimitedRPC) RequestAirdrop(
	ctx context.Context,
	account solana.PublicKey,
	lamports uint64,
	commitment rpc.CommitmentType,
) (solana.Signature, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	return r.next.RequestAirdrop(ctx, account, lamports, commitment)
}

var _ domain.RPCClient = (*rateLimitedRPC)(nil)
