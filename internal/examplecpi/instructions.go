package examplecpi

import (
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
)

// Instruction names as the program declares them.
const (
	InstructionInitialize     = "initialize"
	InstructionInitializeUser = "initialize_user"
	InstructionDeposit        = "deposit"
	InstructionWithdraw       = "withdraw"
)

// InitializeUserAccounts are the accounts of initialize_user.
type InitializeUserAccounts struct {
	Wrapper       solana.PublicKey
	CypherGroup   solana.PublicKey
	CypherUser    solana.PublicKey
	Admin         solana.PublicKey
	CypherProgram solana.PublicKey
}

// Metas returns the accounts in program order.
func (a InitializeUserAccounts) Metas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(a.Wrapper).WRITE(),
		solana.Meta(a.CypherGroup),
		solana.Meta(a.CypherUser).WRITE(),
		solana.Meta(a.Admin).WRITE().SIGNER(),
		solana.Meta(a.CypherProgram),
		solana.Meta(solana.SystemProgramID),
	}
}

// DepositAccounts are the accounts of deposit.
type DepositAccounts struct {
	Wrapper            solana.PublicKey
	CypherGroup        solana.PublicKey
	CypherUser         solana.PublicKey
	CypherPcVault      solana.PublicKey
	SourceTokenAccount solana.PublicKey
	Admin              solana.PublicKey
	CypherProgram      solana.PublicKey
}

// Metas returns the accounts in program order.
func (a DepositAccounts) Metas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(a.Wrapper),
		solana.Meta(a.CypherGroup).WRITE(),
		solana.Meta(a.CypherUser).WRITE(),
		solana.Meta(a.CypherPcVault).WRITE(),
		solana.Meta(a.SourceTokenAccount).WRITE(),
		solana.Meta(a.Admin).WRITE().SIGNER(),
		solana.Meta(a.CypherProgram),
		solana.Meta(solana.TokenProgramID),
	}
}

// WithdrawAccounts are the accounts of withdraw.
type WithdrawAccounts struct {
	Wrapper                 solana.PublicKey
	CypherGroup             solana.PublicKey
	CypherUser              solana.PublicKey
	CypherPcVault           solana.PublicKey
	VaultSigner             solana.PublicKey
	DestinationTokenAccount solana.PublicKey
	Admin                   solana.PublicKey
	CypherProgram           solana.PublicKey
}

// Metas returns the accounts in program order.
func (a WithdrawAccounts) Metas() []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.Meta(a.Wrapper),
		solana.Meta(a.CypherGroup).WRITE(),
		solana.Meta(a.CypherUser).WRITE(),
		solana.Meta(a.CypherPcVault).WRITE(),
		solana.Meta(a.VaultSigner).WRITE(),
		solana.Meta(a.DestinationTokenAccount).WRITE(),
		solana.Meta(a.Admin).WRITE().SIGNER(),
		solana.Meta(a.CypherProgram),
		solana.Meta(solana.TokenProgramID),
	}
}

// Client builds example-cpi calls on top of an anchor.Program.
type Client struct {
	program *anchor.Program
}

// New returns a Client for program.
func New(program *anchor.Program) *Client { return &Client{program: program} }

// Program returns the underlying program handle.
func (c *Client) Program() *anchor.Program { return c.program }

// Initialize builds the argument-less initialize call.
func (c *Client) Initialize() *anchor.MethodBuilder {
	return c.program.Method(InstructionInitialize)
}

// InitializeUser creates the wrapper for the admin and, through cypher, a
// cypher user owned by that wrapper.
func (c *Client) InitializeUser(
	a InitializeUserAccounts,
	wrapperBump, cypherUserBump uint8,
	accountNumber uint64,
) *anchor.MethodBuilder {
	return c.program.Method(InstructionInitializeUser).
		Args(wrapperBump, cypherUserBump, accountNumber).
		Accounts(a.Metas()...)
}

// Deposit moves amount of the quote token from the source account into the
// cypher user's collateral.
func (c *Client) Deposit(a DepositAccounts, amount uint64) *anchor.MethodBuilder {
	return c.program.Method(InstructionDeposit).
		Args(amount).
		Accounts(a.Metas()...)
}

// Withdraw moves amount of quote collateral to the destination account.
func (c *Client) Withdraw(a WithdrawAccounts, amount uint64) *anchor.MethodBuilder {
	return c.program.Method(InstructionWithdraw).
		Args(amount).
		Accounts(a.Metas()...)
}

// NewInitializeUserAccounts derives the wrapper and numbered cypher user for
// admin in group and returns the accounts together with both bumps.
func NewInitializeUserAccounts(
	cluster Cluster,
	group, admin solana.PublicKey,
	accountNumber uint64,
) (InitializeUserAccounts, uint8, uint8, error) {
	wrapper, wrapperBump, err := DeriveWrapper(group, admin)
	if err != nil {
		return InitializeUserAccounts{}, 0, 0, err
	}
	user, userBump, err := DeriveCypherUserWithNumber(cluster.CypherProgramID, group, wrapper, accountNumber)
	if err != nil {
		return InitializeUserAccounts{}, 0, 0, err
	}
	return InitializeUserAccounts{
		Wrapper:       wrapper,
		CypherGroup:   group,
		CypherUser:    user,
		Admin:         admin,
		CypherProgram: cluster.CypherProgramID,
	}, wrapperBump, userBump, nil
}
