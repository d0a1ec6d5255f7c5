// Package wallet manages creation, import and unlocking of the local
// fee-payer keypair.
//
// It enforces passphrase policy, generates Ed25519 keypairs, imports Solana
// CLI keygen files, and persists keys via the domain.WalletStore.
package wallet
