package validator

import (
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/examplecpi"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = solana.LAMPORTS_PER_SOL

// NewLocalnet returns a ledger with the system program, example-cpi, cypher
// and the quote faucet registered for cluster's deployment. Cypher groups are
// added with CreateCypherGroup.
func NewLocalnet(cluster examplecpi.Cluster) *Ledger {
	l := NewLedger()
	cypher := NewCypherHandler(cluster)
	l.Register(solana.SystemProgramID, SystemHandler{})
	l.Register(cluster.CypherProgramID, cypher)
	l.Register(examplecpi.ProgramID, NewExampleCPIHandler(cluster, cypher))
	l.Register(examplecpi.FaucetProgramID, &FaucetHandler{QuoteMint: cluster.QuoteMint})
	for _, id := range []solana.PublicKey{cluster.DexProgramID, solana.TokenProgramID} {
		l.SetAccount(id, Account{Lamports: 1, Owner: solana.BPFLoaderUpgradeableProgramID, Executable: true})
	}
	return l
}

// FundUser gives owner sol SOL and a quote token account holding quote
// tokens, and returns the token account.
func (l *Ledger) FundUser(owner solana.PublicKey, sol, quote uint64, mint solana.PublicKey) solana.PublicKey {
	l.Fund(owner, sol*LamportsPerSOL)
	return l.CreateTokenAccount(mint, owner, quote)
}
