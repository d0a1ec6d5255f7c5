package validator

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// SystemHandler implements the system program's Transfer and CreateAccount.
type SystemHandler struct{}

// Process decodes and applies one system instruction.
func (SystemHandler) Process(ctx *InvokeContext) error {
	inst, err := system.DecodeInstruction(ctx.Accounts, ctx.Data)
	if err != nil {
		return ErrInvalidInstructionData
	}
	switch impl := inst.Impl.(type) {
	case *system.Transfer:
		if len(ctx.Accounts) < 2 {
			return ErrNotEnoughAccountKeys
		}
		if !ctx.IsSigner(0) {
			return ErrMissingRequiredSignature
		}
		return transferLamports(ctx, ctx.Key(0), ctx.Key(1), *impl.Lamports)
	case *system.CreateAccount:
		if len(ctx.Accounts) < 2 {
			return ErrNotEnoughAccountKeys
		}
		if !ctx.IsSigner(0) || !ctx.IsSigner(1) {
			return ErrMissingRequiredSignature
		}
		if ctx.Account(ctx.Key(1)) != nil {
			return CodeAccountInUse
		}
		if err := debit(ctx, ctx.Key(0), *impl.Lamports); err != nil {
			return err
		}
		ctx.SetAccount(ctx.Key(1), &Account{
			Lamports: *impl.Lamports,
			Owner:    *impl.Owner,
			Data:     make([]byte, *impl.Space),
		})
		return nil
	}
	return ErrInvalidInstructionData
}

func debit(ctx *InvokeContext, from solana.PublicKey, lamports uint64) error {
	src := ctx.Account(from)
	if src == nil || src.Lamports < lamports {
		return CodeInsufficientFunds
	}
	src.Lamports -= lamports
	return nil
}

func transferLamports(ctx *InvokeContext, from, to solana.PublicKey, lamports uint64) error {
	if err := debit(ctx, from, lamports); err != nil {
		return err
	}
	dst := ctx.Account(to)
	if dst == nil {
		dst = &Account{Owner: solana.SystemProgramID}
		ctx.SetAccount(to, dst)
	}
	dst.Lamports += lamports
	return nil
}
