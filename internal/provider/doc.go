// Package provider connects examplecpi to a Solana cluster.
//
// A Provider couples a JSON-RPC client with the fee-payer wallet and the
// confirmation options, the way an Anchor provider does. It builds, signs,
// submits and confirms transactions, and implements domain.TxSender so that
// anchor.Program can send through it.
//
// FromEnv reads ANCHOR_PROVIDER_URL and ANCHOR_WALLET, matching
// AnchorProvider.env() in the TypeScript client. RPC failures and failed
// transactions are returned to the caller; nothing is retried.
package provider
