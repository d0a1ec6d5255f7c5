package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"

	"github.com/gagliardetto/solana-go"
)

// ErrSeedSize is returned when a seed is not ed25519.SeedSize bytes.
var ErrSeedSize = errors.New("keypair seed must be 32 bytes")

// NewKeypair returns a fresh Ed25519 keypair as a Solana private key
// (seed || public key).
func NewKeypair() (solana.PrivateKey, error) {
	return newKeypairFrom(rand.Reader)
}

func newKeypairFrom(r io.Reader) (solana.PrivateKey, error) {
	_, sk, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, err
	}
	return solana.PrivateKey(sk), nil
}

// KeypairFromSeed derives the keypair for a 32-byte seed.
func KeypairFromSeed(seed []byte) (solana.PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrSeedSize
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

// ValidKeypair reports whether key is 64 bytes and its public half matches
// its seed.
func ValidKeypair(key solana.PrivateKey) bool {
	if len(key) != ed25519.PrivateKeySize {
		return false
	}
	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	defer Wipe(derived)
	return string(derived[ed25519.SeedSize:]) == string(key[ed25519.SeedSize:])
}
