package interfaces

import (
	"github.com/gagliardetto/solana-go"

	domaintypes "examplecpi/internal/domain/types"
)

// WalletStore persists the local fee-payer keypair, encrypted at rest.
type WalletStore interface {
	SaveKeypair(passphrase string, key solana.PrivateKey) error
	LoadKeypair(passphrase string) (solana.PrivateKey, error)
	HasKeypair() (bool, error)
}

// HistoryStore keeps the signatures of transactions sent from this machine.
type HistoryStore interface {
	AppendRecord(record domaintypes.TxRecord) error
	// ListRecords returns at most limit records, newest last. limit <= 0
	// returns everything.
	ListRecords(limit int) ([]domaintypes.TxRecord, error)
}
