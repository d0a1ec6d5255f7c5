package validator

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
	"examplecpi/internal/examplecpi"
)

var discFaucetToUser = anchor.InstructionDiscriminator(examplecpi.InstructionFaucetToUser)

// FaucetHandler mints the quote token into any existing token account of
// that mint.
type FaucetHandler struct {
	QuoteMint solana.PublicKey
}

// Process handles faucet_to_user.
func (h *FaucetHandler) Process(ctx *InvokeContext) error {
	if len(ctx.Data) < anchor.DiscriminatorSize {
		return anchor.ErrorCodeInstructionMissing
	}
	if !anchor.HasDiscriminator(ctx.Data, discFaucetToUser) {
		return anchor.ErrorCodeInstructionFallbackNotFound
	}
	var amount uint64
	if err := bin.NewBorshDecoder(ctx.Data[anchor.DiscriminatorSize:]).Decode(&amount); err != nil {
		return anchor.ErrorCodeInstructionDidNotDeserialize
	}
	if len(ctx.Accounts) < 5 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	target := ctx.Account(ctx.Key(3))
	if target == nil {
		return anchor.ErrorCodeAccountNotInitialized
	}
	tok, err := decodeTokenAccount(target)
	if err != nil {
		return anchor.ErrorCodeAccountOwnedByWrongProgram
	}
	if !tok.mint.Equals(h.QuoteMint) {
		return anchor.ErrorCodeConstraintRaw
	}
	setTokenAmount(target, tok.amount+amount)
	ctx.Log("minted %d to %s", amount, ctx.Key(3))
	return nil
}
