package interfaces

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// TxSender signs, submits and confirms transactions. The wallet of the
// implementation pays fees and signs first; extra signers are appended.
type TxSender interface {
	SendAndConfirm(
		ctx context.Context,
		instructions []solana.Instruction,
		signers ...solana.PrivateKey,
	) (solana.Signature, error)
}
