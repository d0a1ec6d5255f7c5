package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplecpi/internal/examplecpi"
)

type testnet struct {
	ledger *Ledger
	client *rpc.Client
	url    string
}

func newTestnet(t *testing.T) *testnet {
	t.Helper()
	ledger := NewLocalnet(examplecpi.ClusterFor("localnet"))
	srv := httptest.NewServer(NewServer(ledger, nil))
	t.Cleanup(srv.Close)
	return &testnet{ledger: ledger, client: rpc.New(srv.URL), url: srv.URL}
}

func newFundedKey(t *testing.T, l *Ledger, lamports uint64) solana.PrivateKey {
	t.Helper()
	key := solana.NewWallet().PrivateKey
	l.Fund(key.PublicKey(), lamports)
	return key
}

func (n *testnet) signedTx(t *testing.T, ixs []solana.Instruction, signers ...solana.PrivateKey) *solana.Transaction {
	t.Helper()
	bh, err := n.client.GetLatestBlockhash(context.Background(), rpc.CommitmentProcessed)
	require.NoError(t, err)
	tx, err := solana.NewTransaction(ixs, bh.Value.Blockhash, solana.TransactionPayer(signers[0].PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(pub) {
				return &signers[i]
			}
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func rpcErrorCode(t *testing.T, err error) *jsonrpc.RPCError {
	t.Helper()
	var rerr *jsonrpc.RPCError
	require.True(t, errors.As(err, &rerr), "want *jsonrpc.RPCError, got %T: %v", err, err)
	return rerr
}

func TestLatestBlockhashAdvances(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()

	first, err := n.client.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	require.NoError(t, err)
	require.NotNil(t, first.Value)
	assert.False(t, first.Value.Blockhash.IsZero())

	payer := newFundedKey(t, n.ledger, LamportsPerSOL)
	n.ledger.Airdrop(payer.PublicKey(), 1)

	second, err := n.client.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	require.NoError(t, err)
	assert.NotEqual(t, first.Value.Blockhash, second.Value.Blockhash)
	assert.Greater(t, second.Context.Slot, first.Context.Slot)
}

func TestHealthAndVersion(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()

	health, err := n.client.GetHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, rpc.HealthOk, health)

	version, err := n.client.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, Version, version.SolanaCore)
}

func TestTransferLandsAndFinalizes(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)
	to := solana.NewWallet().PublicKey()

	ix := system.NewTransferInstruction(1000, payer.PublicKey(), to).Build()
	sig, err := n.client.SendTransactionWithOpts(ctx, n.signedTx(t, []solana.Instruction{ix}, payer), rpc.TransactionOpts{})
	require.NoError(t, err)

	var levels []rpc.ConfirmationStatusType
	for i := 0; i < 4; i++ {
		res, err := n.client.GetSignatureStatuses(ctx, false, sig)
		require.NoError(t, err)
		require.Len(t, res.Value, 1)
		require.NotNil(t, res.Value[0])
		assert.Nil(t, res.Value[0].Err)
		levels = append(levels, res.Value[0].ConfirmationStatus)
	}
	assert.Equal(t, []rpc.ConfirmationStatusType{
		rpc.ConfirmationStatusProcessed,
		rpc.ConfirmationStatusConfirmed,
		rpc.ConfirmationStatusFinalized,
		rpc.ConfirmationStatusFinalized,
	}, levels)

	bal, err := n.client.GetBalance(ctx, to, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal.Value)

	payerBal, err := n.client.GetBalance(ctx, payer.PublicKey(), rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, LamportsPerSOL-1000-DefaultLamportsPerSignature, payerBal.Value)
}

func TestUnknownSignatureHasNoStatus(t *testing.T) {
	n := newTestnet(t)
	res, err := n.client.GetSignatureStatuses(context.Background(), false, solana.Signature{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Nil(t, res.Value[0])
}

func TestPreflightFailureLeavesNoTrace(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)

	ix := system.NewTransferInstruction(2*LamportsPerSOL, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	_, err := n.client.SendTransactionWithOpts(ctx, n.signedTx(t, []solana.Instruction{ix}, payer), rpc.TransactionOpts{})
	rerr := rpcErrorCode(t, err)
	assert.Equal(t, codeSimulationFailed, rerr.Code)
	assert.Contains(t, rerr.Message, "Error processing Instruction 0: custom program error: 0x1")

	acc, ok := n.ledger.Account(payer.PublicKey())
	require.True(t, ok)
	assert.Equal(t, LamportsPerSOL, acc.Lamports)
}

func TestSkipPreflightRecordsFailure(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)

	ix := system.NewTransferInstruction(2*LamportsPerSOL, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	sig, err := n.client.SendTransactionWithOpts(ctx, n.signedTx(t, []solana.Instruction{ix}, payer),
		rpc.TransactionOpts{SkipPreflight: true})
	require.NoError(t, err)

	res, err := n.client.GetSignatureStatuses(ctx, false, sig)
	require.NoError(t, err)
	require.NotNil(t, res.Value[0])
	raw, err := json.Marshal(res.Value[0].Err)
	require.NoError(t, err)
	assert.JSONEq(t, `{"InstructionError":[0,{"Custom":1}]}`, string(raw))

	acc, _ := n.ledger.Account(payer.PublicKey())
	assert.Equal(t, LamportsPerSOL-DefaultLamportsPerSignature, acc.Lamports)
}

func TestAtomicAcrossInstructions(t *testing.T) {
	n := newTestnet(t)
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)
	to := solana.NewWallet().PublicKey()

	ixs := []solana.Instruction{
		system.NewTransferInstruction(500, payer.PublicKey(), to).Build(),
		system.NewTransferInstruction(2*LamportsPerSOL, payer.PublicKey(), to).Build(),
	}
	_, err := n.client.SendTransactionWithOpts(context.Background(), n.signedTx(t, ixs, payer), rpc.TransactionOpts{})
	rerr := rpcErrorCode(t, err)
	assert.Contains(t, rerr.Message, "Instruction 1")

	_, ok := n.ledger.Account(to)
	assert.False(t, ok)
}

func TestUnknownProgramRejected(t *testing.T) {
	n := newTestnet(t)
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)

	ix := solana.NewInstruction(solana.NewWallet().PublicKey(), solana.AccountMetaSlice{}, []byte{1})
	_, err := n.client.SendTransactionWithOpts(context.Background(), n.signedTx(t, []solana.Instruction{ix}, payer),
		rpc.TransactionOpts{SkipPreflight: true})
	rerr := rpcErrorCode(t, err)
	assert.Equal(t, codeSimulationFailed, rerr.Code)
	assert.Contains(t, rerr.Message, "Attempt to load a program that does not exist")
}

func TestUnfundedPayerRejected(t *testing.T) {
	n := newTestnet(t)
	payer := solana.NewWallet().PrivateKey

	ix := system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	_, err := n.client.SendTransactionWithOpts(context.Background(), n.signedTx(t, []solana.Instruction{ix}, payer),
		rpc.TransactionOpts{})
	rerr := rpcErrorCode(t, err)
	assert.Contains(t, rerr.Message, "no record of a prior credit")
}

func TestBadSignatureRejected(t *testing.T) {
	n := newTestnet(t)
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)

	ix := system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	tx := n.signedTx(t, []solana.Instruction{ix}, payer)
	tx.Signatures[0][0] ^= 0xff
	_, err := n.client.SendTransactionWithOpts(context.Background(), tx, rpc.TransactionOpts{})
	rerr := rpcErrorCode(t, err)
	assert.Equal(t, codeSignatureVerification, rerr.Code)
}

func TestDuplicateAndStaleBlockhash(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()
	payer := newFundedKey(t, n.ledger, LamportsPerSOL)

	ix := system.NewTransferInstruction(1, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	tx := n.signedTx(t, []solana.Instruction{ix}, payer)
	_, err := n.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{})
	require.NoError(t, err)

	_, err = n.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{})
	assert.Contains(t, rpcErrorCode(t, err).Message, "already been processed")

	stale, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{9}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	_, err = stale.Sign(func(solana.PublicKey) *solana.PrivateKey { return &payer })
	require.NoError(t, err)
	_, err = n.client.SendTransactionWithOpts(ctx, stale, rpc.TransactionOpts{})
	assert.Contains(t, rpcErrorCode(t, err).Message, "Blockhash not found")
}

func TestAccountInfo(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()

	_, err := n.client.GetAccountInfo(ctx, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, rpc.ErrNotFound)

	owner := solana.NewWallet().PublicKey()
	tokenAcc := n.ledger.CreateTokenAccount(examplecpi.QuoteMintDevnet, owner, 42)
	res, err := n.client.GetAccountInfo(ctx, tokenAcc)
	require.NoError(t, err)
	assert.Equal(t, solana.TokenProgramID, res.Value.Owner)
	data := res.GetBinary()
	require.Len(t, data, TokenAccountSize)
	assert.Equal(t, examplecpi.QuoteMintDevnet[:], data[:32])
	assert.Equal(t, owner[:], data[32:64])

	bal, err := n.ledger.TokenBalance(tokenAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal)
}

func TestRequestAirdrop(t *testing.T) {
	n := newTestnet(t)
	ctx := context.Background()
	to := solana.NewWallet().PublicKey()

	sig, err := n.client.RequestAirdrop(ctx, to, 7*LamportsPerSOL, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.False(t, sig.IsZero())

	bal, err := n.client.GetBalance(ctx, to, rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 7*LamportsPerSOL, bal.Value)

	res, err := n.client.GetSignatureStatuses(ctx, false, sig)
	require.NoError(t, err)
	require.NotNil(t, res.Value[0])
}

func postRaw(t *testing.T, url, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestJSONRPCErrors(t *testing.T) {
	n := newTestnet(t)

	out := postRaw(t, n.url, `{"jsonrpc":"2.0","id":"abc","method":"getBlock","params":[]}`)
	assert.Equal(t, "abc", out["id"])
	errObj := out["error"].(map[string]any)
	assert.EqualValues(t, codeMethodNotFound, errObj["code"])

	out = postRaw(t, n.url, `{not json`)
	errObj = out["error"].(map[string]any)
	assert.EqualValues(t, codeParseError, errObj["code"])

	out = postRaw(t, n.url, `{"jsonrpc":"2.0","id":7,"method":"getBalance","params":["nope"]}`)
	assert.EqualValues(t, 7, out["id"])
	errObj = out["error"].(map[string]any)
	assert.EqualValues(t, codeInvalidParams, errObj["code"])
}

func TestFeeIsTakenBeforeExecution(t *testing.T) {
	n := newTestnet(t)
	payer := newFundedKey(t, n.ledger, 10_000)
	to := solana.NewWallet().PublicKey()

	// 10_000 covers the transfer or the fee, not both.
	ix := system.NewTransferInstruction(10_000, payer.PublicKey(), to).Build()
	_, err := n.client.SendTransactionWithOpts(context.Background(), n.signedTx(t, []solana.Instruction{ix}, payer), rpc.TransactionOpts{})
	require.Error(t, err)
	assert.Equal(t, codeSimulationFailed, rpcErrorCode(t, err).Code)

	acc, ok := n.ledger.Account(payer.PublicKey())
	require.True(t, ok)
	assert.Equal(t, uint64(10_000), acc.Lamports)
	_, ok = n.ledger.Account(to)
	assert.False(t, ok)
}
