package examplecpi

import (
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
)

// ProgramID is the example-cpi program address.
var ProgramID = solana.MustPublicKeyFromBase58("Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS")

// Cypher program addresses.
var (
	CypherProgramIDMainnet = solana.MustPublicKeyFromBase58("CYPHER79cJLzQ8iyyr6oeizfGgR9YU9NM9oTMPWak5oQ")
	CypherProgramIDDevnet  = solana.MustPublicKeyFromBase58("8Z8nDAa98hgdYCS9SyAyAesxE3ZhAq8Qo1E8v2V8VU56")
)

// Quote token mints.
var (
	QuoteMintMainnet = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	QuoteMintDevnet  = solana.MustPublicKeyFromBase58("DPhNUKVhnrkdbq37GUgTUBRbZLsvziX1p5e5YUXyjBsb")
)

// Serum DEX v3 program addresses.
var (
	DexProgramIDMainnet = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	DexProgramIDDevnet  = solana.MustPublicKeyFromBase58("DESVgJVGajEgKGXhb6XmqDHGz3VjdgP7rEVESBgxmroY")
)

// Devnet faucet accounts.
var (
	FaucetProgramID     = solana.MustPublicKeyFromBase58("7njrvFJx4NJQvzywv1LdnPwzYYTSh1wWgGL5vkwTUuSS")
	FaucetInfo          = solana.MustPublicKeyFromBase58("9euKg1WZtat7iupnqZJPhVFUq1Eg3VJVAdAsv5T88Nf1")
	FaucetMintAuthority = solana.MustPublicKeyFromBase58("ALtS7g1kR3T1YkAZFo8SwKP36nhCKVf11Eh4xDsxKY1U")
)

// ProgramName is the workspace name of the program.
const ProgramName = "example_cpi"

// Cluster holds the cluster-dependent addresses.
type Cluster struct {
	Name            string
	CypherProgramID solana.PublicKey
	QuoteMint       solana.PublicKey
	DexProgramID    solana.PublicKey
}

// ClusterFor resolves a cluster moniker or RPC URL. Anything that is not
// mainnet uses the devnet deployment, as the localnet test setup does.
func ClusterFor(cluster string) Cluster {
	name := anchor.ClusterName(cluster)
	if name == "mainnet" {
		return Cluster{
			Name:            name,
			CypherProgramID: CypherProgramIDMainnet,
			QuoteMint:       QuoteMintMainnet,
			DexProgramID:    DexProgramIDMainnet,
		}
	}
	return Cluster{
		Name:            name,
		CypherProgramID: CypherProgramIDDevnet,
		QuoteMint:       QuoteMintDevnet,
		DexProgramID:    DexProgramIDDevnet,
	}
}
