package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/crypto"
	"examplecpi/internal/domain"
)

const walletFilename = "wallet.json.enc"

// ErrNoWallet is returned by LoadKeypair before any keypair was saved.
var ErrNoWallet = errors.New("no wallet stored")

// ErrInvalidKeypair is returned for keys that are not a consistent
// 64-byte Ed25519 keypair.
var ErrInvalidKeypair = errors.New("invalid keypair")

// WalletFileStore persists the fee-payer keypair, encrypted with a passphrase.
type WalletFileStore struct {
	dir    string
	params scryptParams
	mu     sync.Mutex
}

// NewWalletFileStore returns a WalletFileStore rooted at dir.
func NewWalletFileStore(dir string) *WalletFileStore {
	return &WalletFileStore{dir: dir, params: defaultScryptParams()}
}

func (s *WalletFileStore) path() string { return filepath.Join(s.dir, walletFilename) }

// SaveKeypair encrypts key and writes it to disk, replacing any previous one.
func (s *WalletFileStore) SaveKeypair(passphrase string, key solana.PrivateKey) error {
	if !crypto.ValidKeypair(key) {
		return ErrInvalidKeypair
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := append([]byte(nil), key...)
	defer crypto.Wipe(raw)

	ct, err := seal(passphrase, raw, s.params)
	if err != nil {
		return err
	}
	return writeFile(s.path(), ct, 0o600)
}

// LoadKeypair reads and decrypts the stored keypair.
func (s *WalletFileStore) LoadKeypair(passphrase string) (solana.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path())
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoWallet
	}
	pt, err := open(passphrase, b)
	if err != nil {
		return nil, err
	}
	key := solana.PrivateKey(pt)
	if !crypto.ValidKeypair(key) {
		crypto.Wipe(pt)
		return nil, fmt.Errorf("%w: stored key", ErrInvalidKeypair)
	}
	return key, nil
}

// HasKeypair reports whether a wallet file exists.
func (s *WalletFileStore) HasKeypair() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Compile-time assertion that WalletFileStore implements domain.WalletStore.
var _ domain.WalletStore = (*WalletFileStore)(nil)
