package examplecpi

import (
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
)

// InstructionFaucetToUser is the faucet method that mints quote tokens.
const InstructionFaucetToUser = "faucet_to_user"

// FaucetToUser mints amount of the devnet quote token into target, a token
// account for QuoteMintDevnet.
func FaucetToUser(target solana.PublicKey, amount uint64) (solana.Instruction, error) {
	data, err := anchor.InstructionData(InstructionFaucetToUser, amount)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(FaucetProgramID, solana.AccountMetaSlice{
		solana.Meta(FaucetInfo),
		solana.Meta(QuoteMintDevnet).WRITE(),
		solana.Meta(FaucetMintAuthority),
		solana.Meta(target).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, data), nil
}
