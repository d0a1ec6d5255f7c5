package validator

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplecpi/internal/anchor"
	"examplecpi/internal/examplecpi"
)

type cypherFixture struct {
	*fixture
	cypher *examplecpi.CypherClient
	user   solana.PublicKey
	bump   uint8
}

func newCypherFixture(t *testing.T) *cypherFixture {
	t.Helper()
	f := newFixture(t)
	user, bump, err := examplecpi.DeriveCypherUserWithNumber(testCluster.CypherProgramID, f.group, f.admin.PublicKey(), 3)
	require.NoError(t, err)
	return &cypherFixture{fixture: f, cypher: examplecpi.NewCypherClient(testCluster, nil), user: user, bump: bump}
}

func (f *cypherFixture) send(t *testing.T, ix solana.Instruction, signers ...solana.PrivateKey) *rpcError {
	t.Helper()
	if len(signers) == 0 {
		signers = []solana.PrivateKey{f.admin}
	}
	return submit(t, f.ledger, []solana.Instruction{ix}, signers...)
}

func (f *cypherFixture) create(t *testing.T) {
	t.Helper()
	owner := f.admin.PublicKey()
	require.Nil(t, f.send(t, build(t, f.cypher.CreateCypherUser(f.group, f.user, owner, owner, f.bump, 3))))
}

func TestCypher_CreateCypherUser(t *testing.T) {
	f := newCypherFixture(t)
	f.create(t)

	u, err := f.ledger.CypherUser(f.user)
	require.NoError(t, err)
	assert.Equal(t, f.admin.PublicKey(), u.Authority)
	assert.Equal(t, f.group, u.Group)
	assert.Equal(t, uint64(3), u.AccountNumber)

	owner := f.admin.PublicKey()
	assertCustom(t, f.send(t, build(t, f.cypher.CreateCypherUser(f.group, f.user, owner, owner, f.bump, 3))),
		uint32(CodeAccountInUse))
	assertCustom(t, f.send(t, build(t, f.cypher.CreateCypherUser(f.group, f.user, owner, owner, f.bump, 4))),
		uint32(anchor.ErrorCodeConstraintSeeds))
}

func TestCypher_InitCypherUser(t *testing.T) {
	f := newCypherFixture(t)
	owner := f.admin.PublicKey()
	legacy, bump, err := examplecpi.DeriveCypherUser(testCluster.CypherProgramID, f.group, owner)
	require.NoError(t, err)

	require.Nil(t, f.send(t, build(t, f.cypher.InitCypherUser(f.group, legacy, owner, bump))))
	u, err := f.ledger.CypherUser(legacy)
	require.NoError(t, err)
	assert.Equal(t, owner, u.Authority)
	assert.Zero(t, u.AccountNumber)
}

func TestCypher_CollateralLifecycle(t *testing.T) {
	f := newCypherFixture(t)
	f.create(t)
	owner := f.admin.PublicKey()

	require.Nil(t, f.send(t, build(t, f.cypher.DepositCollateral(f.group, f.user, owner, f.cg.QuoteVault, f.token, 300))))
	vault, err := f.ledger.TokenBalance(f.cg.QuoteVault)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), vault)

	assertCustom(t, f.send(t, build(t, f.cypher.CloseCypherUser(f.group, f.user, owner))),
		uint32(CypherErrCollateralNotEmpty))

	rerr := f.send(t, build(t, f.cypher.WithdrawCollateral(f.group, f.user, owner, f.signer, f.cg.QuoteVault, f.token, 301)))
	assertCustom(t, rerr, uint32(CypherErrInsufficientCollateral))
	require.Nil(t, f.send(t, build(t, f.cypher.WithdrawCollateral(f.group, f.user, owner, f.signer, f.cg.QuoteVault, f.token, 300))))

	before, _ := f.ledger.Account(owner)
	require.Nil(t, f.send(t, build(t, f.cypher.CloseCypherUser(f.group, f.user, owner))))
	_, ok := f.ledger.Account(f.user)
	assert.False(t, ok)
	after, _ := f.ledger.Account(owner)
	assert.Equal(t, before.Lamports+rentExempt(CypherUserSize)-DefaultLamportsPerSignature, after.Lamports)
}

func TestCypher_DepositCollateralAliasing(t *testing.T) {
	f := newCypherFixture(t)
	f.create(t)
	owner := f.admin.PublicKey()

	rerr := f.send(t, build(t, f.cypher.DepositCollateral(f.group, f.user, owner, f.token, f.token, 10)))
	assertInstructionError(t, rerr, ErrInvalidArgument)
	rerr = f.send(t, build(t, f.cypher.WithdrawCollateral(f.group, f.user, owner, f.signer, f.cg.QuoteVault, f.cg.QuoteVault, 0)))
	assertInstructionError(t, rerr, ErrInvalidArgument)
}

func TestCypher_SetDelegate(t *testing.T) {
	f := newCypherFixture(t)
	f.create(t)
	owner := f.admin.PublicKey()
	delegate := solana.NewWallet().PrivateKey
	dtoken := f.ledger.FundUser(delegate.PublicKey(), 1, 50, testCluster.QuoteMint)

	deposit := build(t, f.cypher.DepositCollateral(f.group, f.user, delegate.PublicKey(), f.cg.QuoteVault, dtoken, 50))
	assertCustom(t, f.send(t, deposit, delegate), uint32(CypherErrInvalidUser))

	require.Nil(t, f.send(t, build(t, f.cypher.SetDelegate(f.group, f.user, owner, delegate.PublicKey()))))
	u, err := f.ledger.CypherUser(f.user)
	require.NoError(t, err)
	assert.Equal(t, delegate.PublicKey(), u.Delegate)

	require.Nil(t, f.send(t, deposit, delegate))

	// A delegate may add collateral but not take it out or re-delegate.
	withdraw := f.cypher.WithdrawCollateral(f.group, f.user, delegate.PublicKey(), f.signer, f.cg.QuoteVault, dtoken, 50)
	assertCustom(t, f.send(t, build(t, withdraw), delegate), uint32(CypherErrInvalidUser))
	redelegate := f.cypher.SetDelegate(f.group, f.user, delegate.PublicKey(), delegate.PublicKey())
	assertCustom(t, f.send(t, build(t, redelegate), delegate), uint32(CypherErrInvalidUser))
}

func TestCypher_OpenOrders(t *testing.T) {
	f := newCypherFixture(t)
	f.create(t)
	owner := f.admin.PublicKey()
	market := solana.NewWallet().PublicKey()
	oo, _, err := examplecpi.DeriveOpenOrders(testCluster.CypherProgramID, market, f.user)
	require.NoError(t, err)

	openIx, err := f.cypher.InitOpenOrders(f.group, f.user, owner, owner, market)
	require.NoError(t, err)
	require.Nil(t, f.send(t, openIx))
	acc, ok := f.ledger.Account(oo)
	require.True(t, ok)
	assert.Equal(t, testCluster.DexProgramID, acc.Owner)
	assert.Len(t, acc.Data, OpenOrdersSize)

	assertCustom(t, f.send(t, openIx), uint32(CodeAccountInUse))

	closeIx, err := f.cypher.CloseOpenOrders(f.group, f.user, owner, market)
	require.NoError(t, err)
	require.Nil(t, f.send(t, closeIx))
	_, ok = f.ledger.Account(oo)
	assert.False(t, ok)
}

func TestCypher_InitOpenOrdersChecksMarketAuthority(t *testing.T) {
	f := newCypherFixture(t)
	f.create(t)
	owner := f.admin.PublicKey()
	market := solana.NewWallet().PublicKey()

	ix, err := f.cypher.InitOpenOrders(f.group, f.user, owner, owner, market)
	require.NoError(t, err)
	accounts := ix.Accounts()
	accounts[5] = solana.Meta(solana.NewWallet().PublicKey())
	forged := solana.NewInstruction(testCluster.CypherProgramID, accounts, mustData(t, ix))
	assertCustom(t, f.send(t, forged), uint32(anchor.ErrorCodeConstraintSeeds))
}

func TestCypher_UnknownDexInstruction(t *testing.T) {
	f := newCypherFixture(t)
	ix := solana.NewInstruction(testCluster.CypherProgramID, solana.AccountMetaSlice{}, examplecpi.DexInstructionData(3))
	assertCustom(t, f.send(t, ix), uint32(anchor.ErrorCodeInstructionFallbackNotFound))
}

func mustData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}
