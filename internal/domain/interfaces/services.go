package interfaces

import (
	"github.com/gagliardetto/solana-go"

	domaintypes "examplecpi/internal/domain/types"
)

// WalletService creates, imports and unlocks the local wallet.
type WalletService interface {
	Generate(passphrase string) (solana.PublicKey, domaintypes.Fingerprint, error)
	Import(passphrase string, keygenPath string) (solana.PublicKey, error)
	Load(passphrase string) (solana.PrivateKey, error)
	Address(passphrase string) (solana.PublicKey, error)
}
