package store

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/crypto"
)

// ReadKeygenFile loads a plain Solana CLI keypair file: a JSON array of the
// 64 secret-key bytes, as written by `solana-keygen new`. This is the format
// ANCHOR_WALLET points at.
func ReadKeygenFile(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keygen file %q: %w", path, err)
	}
	if !crypto.ValidKeypair(key) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeypair, path)
	}
	return key, nil
}

// WriteKeygenFile writes key in the Solana CLI format with mode 0600.
func WriteKeygenFile(path string, key solana.PrivateKey) error {
	if !crypto.ValidKeypair(key) {
		return ErrInvalidKeypair
	}
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	b, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return writeFile(path, b, 0o600)
}
