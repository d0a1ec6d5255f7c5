// Package validator is an in-memory Solana JSON-RPC node for development
// and tests.
//
// It accepts signed transactions over the standard JSON-RPC methods, checks
// signatures, blockhash and fee payer balance, and executes each instruction
// against a registered ProgramHandler. Instructions of one transaction apply
// atomically: either every account change commits or none does.
//
// Supported methods
//
//	getLatestBlockhash, sendTransaction, getSignatureStatuses,
//	getAccountInfo, getBalance, requestAirdrop, getVersion, getHealth
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - A transaction that calls an unregistered program is rejected with
//     error -32002 "Attempt to load a program that does not exist".
//   - With preflight enabled a failing transaction is rejected with -32002
//     and never lands. With skipPreflight it lands as failed and its status
//     carries the InstructionError.
//   - A signature status advances one commitment level (processed,
//     confirmed, finalized) each time it is queried.
//
// Handlers for the system transfer, the example-cpi program, the subset of
// cypher the clients call and the devnet faucet are provided. Example-cpi's
// CPIs into cypher run the cypher handler's code in-process with the
// wrapper as signer. Groups are seeded with Ledger.CreateCypherGroup.
package validator
