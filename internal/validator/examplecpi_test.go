package validator

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examplecpi/internal/anchor"
	"examplecpi/internal/examplecpi"
)

var testCluster = examplecpi.ClusterFor("localnet")

func submit(t *testing.T, l *Ledger, ixs []solana.Instruction, signers ...solana.PrivateKey) *rpcError {
	t.Helper()
	l.mu.Lock()
	bh := l.blockhash
	l.mu.Unlock()
	tx, err := solana.NewTransaction(ixs, bh, solana.TransactionPayer(signers[0].PublicKey()))
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
	_, rerr := l.Submit(tx, false)
	return rerr
}

func build(t *testing.T, b *anchor.MethodBuilder) solana.Instruction {
	t.Helper()
	ix, err := b.Instruction()
	require.NoError(t, err)
	return ix
}

func assertCustom(t *testing.T, rerr *rpcError, code uint32) {
	t.Helper()
	require.NotNil(t, rerr, "expected the transaction to fail")
	data, ok := rerr.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, instructionError(0, CustomError(code)), data["err"])
}

func assertInstructionError(t *testing.T, rerr *rpcError, err error) {
	t.Helper()
	require.NotNil(t, rerr, "expected the transaction to fail")
	data, ok := rerr.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, instructionError(0, err), data["err"])
}

type fixture struct {
	ledger *Ledger
	client *examplecpi.Client
	admin  solana.PrivateKey
	group  solana.PublicKey
	cg     examplecpi.CypherGroup
	signer solana.PublicKey
	token  solana.PublicKey
	init   examplecpi.InitializeUserAccounts
	wb, ub uint8
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := NewLocalnet(testCluster)
	admin := solana.NewWallet().PrivateKey
	token := l.FundUser(admin.PublicKey(), 10, 1_000_000, testCluster.QuoteMint)
	group, cg, err := l.CreateCypherGroup(testCluster)
	require.NoError(t, err)
	signer, err := cg.VaultSigner(group, testCluster.CypherProgramID)
	require.NoError(t, err)
	accts, wb, ub, err := examplecpi.NewInitializeUserAccounts(testCluster, group, admin.PublicKey(), 0)
	require.NoError(t, err)
	program := anchor.NewProgram(anchor.ProgramSpec{Name: examplecpi.ProgramName, ID: examplecpi.ProgramID}, nil)
	return &fixture{
		ledger: l, client: examplecpi.New(program), admin: admin, group: group, cg: cg, signer: signer,
		token: token, init: accts, wb: wb, ub: ub,
	}
}

func (f *fixture) initializeUser(t *testing.T) {
	t.Helper()
	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.InitializeUser(f.init, f.wb, f.ub, 0))}, f.admin)
	require.Nil(t, rerr)
}

func (f *fixture) depositAccounts() examplecpi.DepositAccounts {
	return examplecpi.DepositAccounts{
		Wrapper:            f.init.Wrapper,
		CypherGroup:        f.group,
		CypherUser:         f.init.CypherUser,
		CypherPcVault:      f.cg.QuoteVault,
		SourceTokenAccount: f.token,
		Admin:              f.admin.PublicKey(),
		CypherProgram:      testCluster.CypherProgramID,
	}
}

func (f *fixture) withdrawAccounts() examplecpi.WithdrawAccounts {
	return examplecpi.WithdrawAccounts{
		Wrapper:                 f.init.Wrapper,
		CypherGroup:             f.group,
		CypherUser:              f.init.CypherUser,
		CypherPcVault:           f.cg.QuoteVault,
		VaultSigner:             f.signer,
		DestinationTokenAccount: f.token,
		Admin:                   f.admin.PublicKey(),
		CypherProgram:           testCluster.CypherProgramID,
	}
}

func TestExampleCPI_Initialize(t *testing.T) {
	f := newFixture(t)
	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Initialize())}, f.admin)
	assert.Nil(t, rerr)
}

func TestExampleCPI_UnknownAndMissingDiscriminator(t *testing.T) {
	f := newFixture(t)

	unknown := solana.NewInstruction(examplecpi.ProgramID, solana.AccountMetaSlice{}, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	assertCustom(t, submit(t, f.ledger, []solana.Instruction{unknown}, f.admin),
		uint32(anchor.ErrorCodeInstructionFallbackNotFound))

	short := solana.NewInstruction(examplecpi.ProgramID, solana.AccountMetaSlice{}, []byte{1})
	assertCustom(t, submit(t, f.ledger, []solana.Instruction{short}, f.admin),
		uint32(anchor.ErrorCodeInstructionMissing))
}

func TestExampleCPI_InitializeUserCreatesAccounts(t *testing.T) {
	f := newFixture(t)
	f.initializeUser(t)

	acc, ok := f.ledger.Account(f.init.Wrapper)
	require.True(t, ok)
	assert.Equal(t, examplecpi.ProgramID, acc.Owner)
	w, err := examplecpi.DecodeUserWrapper(acc.Data)
	require.NoError(t, err)
	assert.Equal(t, f.wb, w.Bump[0])
	assert.Equal(t, f.admin.PublicKey(), w.Admin)

	user, err := f.ledger.CypherUser(f.init.CypherUser)
	require.NoError(t, err)
	assert.Equal(t, f.init.Wrapper, user.Authority)
	assert.Equal(t, f.group, user.Group)
	assert.Zero(t, user.Deposited)

	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.InitializeUser(f.init, f.wb, f.ub, 0))}, f.admin)
	assertCustom(t, rerr, uint32(CodeAccountInUse))
}

func TestExampleCPI_InitializeUserConstraints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, a *examplecpi.InitializeUserAccounts, wb, ub *uint8)
		code   anchor.ErrorCode
	}{
		{"wrong wrapper bump", func(f *fixture, a *examplecpi.InitializeUserAccounts, wb, ub *uint8) { *wb-- }, anchor.ErrorCodeConstraintSeeds},
		{"wrong user bump", func(f *fixture, a *examplecpi.InitializeUserAccounts, wb, ub *uint8) { *ub-- }, anchor.ErrorCodeConstraintSeeds},
		{"wrong cypher program", func(f *fixture, a *examplecpi.InitializeUserAccounts, wb, ub *uint8) {
			a.CypherProgram = examplecpi.CypherProgramIDMainnet
		}, anchor.ErrorCodeInvalidProgramID},
		{"wrapper of another admin", func(f *fixture, a *examplecpi.InitializeUserAccounts, wb, ub *uint8) {
			other, bump, err := examplecpi.DeriveWrapper(f.group, solana.NewWallet().PublicKey())
			if err == nil {
				a.Wrapper, *wb = other, bump
			}
		}, anchor.ErrorCodeConstraintSeeds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a, wb, ub := f.init, f.wb, f.ub
			tt.mutate(f, &a, &wb, &ub)
			rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.InitializeUser(a, wb, ub, 0))}, f.admin)
			assertCustom(t, rerr, uint32(tt.code))
		})
	}
}

func TestExampleCPI_InitializeUserNeedsRent(t *testing.T) {
	f := newFixture(t)
	poor := solana.NewWallet().PrivateKey
	f.ledger.Fund(poor.PublicKey(), 10_000)
	accts, wb, ub, err := examplecpi.NewInitializeUserAccounts(testCluster, f.group, poor.PublicKey(), 0)
	require.NoError(t, err)

	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.InitializeUser(accts, wb, ub, 0))}, poor)
	assertCustom(t, rerr, uint32(CodeInsufficientFunds))
}

func TestExampleCPI_DepositAndWithdraw(t *testing.T) {
	f := newFixture(t)
	f.initializeUser(t)

	require.Nil(t, submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(f.depositAccounts(), 400_000))}, f.admin))
	bal, err := f.ledger.TokenBalance(f.token)
	require.NoError(t, err)
	assert.Equal(t, uint64(600_000), bal)
	vault, err := f.ledger.TokenBalance(f.cg.QuoteVault)
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), vault)
	user, err := f.ledger.CypherUser(f.init.CypherUser)
	require.NoError(t, err)
	assert.Equal(t, uint64(400_000), user.Deposited)

	require.Nil(t, submit(t, f.ledger, []solana.Instruction{build(t, f.client.Withdraw(f.withdrawAccounts(), 150_000))}, f.admin))
	bal, err = f.ledger.TokenBalance(f.token)
	require.NoError(t, err)
	assert.Equal(t, uint64(750_000), bal)
	user, err = f.ledger.CypherUser(f.init.CypherUser)
	require.NoError(t, err)
	assert.Equal(t, uint64(250_000), user.Deposited)

	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Withdraw(f.withdrawAccounts(), 250_001))}, f.admin)
	assertCustom(t, rerr, uint32(CypherErrInsufficientCollateral))
}

func TestExampleCPI_DepositConstraints(t *testing.T) {
	t.Run("uninitialized wrapper", func(t *testing.T) {
		f := newFixture(t)
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(f.depositAccounts(), 1))}, f.admin)
		assertCustom(t, rerr, uint32(anchor.ErrorCodeAccountNotInitialized))
	})
	t.Run("insufficient tokens", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(f.depositAccounts(), 2_000_000))}, f.admin)
		assertCustom(t, rerr, uint32(CodeInsufficientFunds))
	})
	t.Run("wrong mint", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		a := f.depositAccounts()
		a.SourceTokenAccount = f.ledger.CreateTokenAccount(examplecpi.QuoteMintMainnet, f.admin.PublicKey(), 10)
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1))}, f.admin)
		assertCustom(t, rerr, uint32(anchor.ErrorCodeConstraintRaw))
	})
	t.Run("other admin", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		intruder := solana.NewWallet().PrivateKey
		f.ledger.Fund(intruder.PublicKey(), LamportsPerSOL)
		a := f.depositAccounts()
		a.Admin = intruder.PublicKey()
		a.SourceTokenAccount = f.ledger.CreateTokenAccount(testCluster.QuoteMint, intruder.PublicKey(), 10)
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1))}, intruder)
		assertCustom(t, rerr, uint32(anchor.ErrorCodeConstraintHasOne))
	})
	t.Run("wrong cypher program", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		a := f.depositAccounts()
		a.CypherProgram = examplecpi.CypherProgramIDMainnet
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1))}, f.admin)
		assertCustom(t, rerr, uint32(anchor.ErrorCodeInvalidProgramID))
	})
	t.Run("vault is not the group vault", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		a := f.depositAccounts()
		a.CypherPcVault = f.ledger.CreateTokenAccount(testCluster.QuoteMint, testCluster.CypherProgramID, 0)
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1))}, f.admin)
		assertCustom(t, rerr, uint32(anchor.ErrorCodeConstraintAddress))
	})
	t.Run("missing group", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		a := f.depositAccounts()
		a.CypherGroup = solana.NewWallet().PublicKey()
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1))}, f.admin)
		// The wrapper seeds include the group, so they fail first.
		assertCustom(t, rerr, uint32(anchor.ErrorCodeConstraintSeeds))
	})
}

func TestExampleCPI_InitializeUserNeedsGroup(t *testing.T) {
	f := newFixture(t)
	group := solana.NewWallet().PublicKey()
	accts, wb, ub, err := examplecpi.NewInitializeUserAccounts(testCluster, group, f.admin.PublicKey(), 0)
	require.NoError(t, err)
	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.InitializeUser(accts, wb, ub, 0))}, f.admin)
	assertCustom(t, rerr, uint32(anchor.ErrorCodeAccountNotInitialized))

	f.ledger.SetAccount(group, Account{Lamports: 1, Owner: solana.SystemProgramID})
	rerr = submit(t, f.ledger, []solana.Instruction{build(t, f.client.InitializeUser(accts, wb, ub, 0))}, f.admin)
	assertCustom(t, rerr, uint32(anchor.ErrorCodeAccountOwnedByWrongProgram))
}

// A vault that is also the source or destination must not move tokens
// into collateral without debiting anything.
func TestExampleCPI_VaultAliasing(t *testing.T) {
	t.Run("deposit from the vault", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		a := f.depositAccounts()
		a.CypherPcVault = f.token
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1_000))}, f.admin)
		assertInstructionError(t, rerr, ErrInvalidArgument)

		user, err := f.ledger.CypherUser(f.init.CypherUser)
		require.NoError(t, err)
		assert.Zero(t, user.Deposited)
		bal, err := f.ledger.TokenBalance(f.token)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), bal)
	})
	t.Run("withdraw to the vault", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		require.Nil(t, submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(f.depositAccounts(), 500))}, f.admin))

		a := f.withdrawAccounts()
		a.DestinationTokenAccount = f.cg.QuoteVault
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Withdraw(a, 500))}, f.admin)
		assertInstructionError(t, rerr, ErrInvalidArgument)

		user, err := f.ledger.CypherUser(f.init.CypherUser)
		require.NoError(t, err)
		assert.Equal(t, uint64(500), user.Deposited)
	})
	t.Run("admin owned vault", func(t *testing.T) {
		f := newFixture(t)
		f.initializeUser(t)
		a := f.depositAccounts()
		a.CypherPcVault = f.ledger.CreateTokenAccount(testCluster.QuoteMint, f.admin.PublicKey(), 0)
		rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(a, 1))}, f.admin)
		assertCustom(t, rerr, uint32(anchor.ErrorCodeConstraintAddress))
	})
}

func TestExampleCPI_WithdrawChecksVaultSigner(t *testing.T) {
	f := newFixture(t)
	f.initializeUser(t)
	require.Nil(t, submit(t, f.ledger, []solana.Instruction{build(t, f.client.Deposit(f.depositAccounts(), 10))}, f.admin))

	a := f.withdrawAccounts()
	a.VaultSigner = solana.NewWallet().PublicKey()
	rerr := submit(t, f.ledger, []solana.Instruction{build(t, f.client.Withdraw(a, 10))}, f.admin)
	assertCustom(t, rerr, uint32(anchor.ErrorCodeConstraintAddress))
}

func TestFaucetMintsQuote(t *testing.T) {
	f := newFixture(t)
	ix, err := examplecpi.FaucetToUser(f.token, 5)
	require.NoError(t, err)
	require.Nil(t, submit(t, f.ledger, []solana.Instruction{ix}, f.admin))

	bal, err := f.ledger.TokenBalance(f.token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_005), bal)

	other := f.ledger.CreateTokenAccount(examplecpi.QuoteMintMainnet, f.admin.PublicKey(), 0)
	ix, err = examplecpi.FaucetToUser(other, 5)
	require.NoError(t, err)
	assertCustom(t, submit(t, f.ledger, []solana.Instruction{ix}, f.admin), uint32(anchor.ErrorCodeConstraintRaw))
}
