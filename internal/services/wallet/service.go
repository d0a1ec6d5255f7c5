package wallet

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/crypto"
	"examplecpi/internal/domain"
	"examplecpi/internal/store"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
	// ErrWalletExists is returned by Generate and Import when a wallet is
	// already stored. Remove the wallet file to replace it.
	ErrWalletExists = errors.New("wallet already exists")
)

// Service manages the fee-payer keypair using a backing store.
type Service struct {
	store domain.WalletStore
}

// New returns a wallet service backed by the given store.
func New(s domain.WalletStore) *Service { return &Service{store: s} }

// Generate creates a new keypair, saves it encrypted with the passphrase,
// and returns its address plus a short fingerprint.
func (s *Service) Generate(passphrase string) (solana.PublicKey, domain.Fingerprint, error) {
	if err := s.checkNew(passphrase); err != nil {
		return solana.PublicKey{}, "", err
	}

	key, err := crypto.NewKeypair()
	if err != nil {
		return solana.PublicKey{}, "", err
	}
	defer crypto.WipeKey(key)

	if err := s.store.SaveKeypair(passphrase, key); err != nil {
		return solana.PublicKey{}, "", err
	}
	pub := key.PublicKey()
	return pub, domain.Fingerprint(crypto.Fingerprint(pub)), nil
}

// Import reads a Solana CLI keygen file and stores it encrypted.
func (s *Service) Import(passphrase string, keygenPath string) (solana.PublicKey, error) {
	if err := s.checkNew(passphrase); err != nil {
		return solana.PublicKey{}, err
	}

	key, err := store.ReadKeygenFile(keygenPath)
	if err != nil {
		return solana.PublicKey{}, err
	}
	defer crypto.WipeKey(key)

	if err := s.store.SaveKeypair(passphrase, key); err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

// Load decrypts and returns the stored keypair. Callers wipe it when done.
func (s *Service) Load(passphrase string) (solana.PrivateKey, error) {
	return s.store.LoadKeypair(passphrase)
}

// Address returns the public key of the stored keypair.
func (s *Service) Address(passphrase string) (solana.PublicKey, error) {
	key, err := s.store.LoadKeypair(passphrase)
	if err != nil {
		return solana.PublicKey{}, err
	}
	defer crypto.WipeKey(key)
	return key.PublicKey(), nil
}

func (s *Service) checkNew(passphrase string) error {
	if !isSecurePassphrase(passphrase) {
		return ErrWeakPassphrase
	}
	has, err := s.store.HasKeypair()
	if err != nil {
		return err
	}
	if has {
		return ErrWalletExists
	}
	return nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.WalletService.
var _ domain.WalletService = (*Service)(nil)
