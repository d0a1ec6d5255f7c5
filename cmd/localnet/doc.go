// Command localnet serves an in-process Solana JSON-RPC endpoint with the
// example-cpi program, a cypher stand-in and the devnet faucet loaded.
//
// Usage:
//
//	localnet [--addr :8899] [--cluster localnet] [--fund <pubkey>]...
//
// Each --fund key receives 100 SOL and a quote token account holding
// 1,000,000 base units. Point the examplecpi CLI at it with
// --url http://127.0.0.1:8899.
package main
