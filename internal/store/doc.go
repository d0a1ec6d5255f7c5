// Package store provides file-based persistence for examplecpi's local data.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking and every write goes through a temp file and rename.
// Stored files live under the configured home directory.
//
// The package includes:
//   - The encrypted fee-payer keypair (WalletFileStore)
//   - The signature history of sent transactions (HistoryFileStore)
//   - Readers and writers for plain Solana CLI keygen files
package store
