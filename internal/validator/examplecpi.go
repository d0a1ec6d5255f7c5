package validator

import (
	"errors"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
	"examplecpi/internal/examplecpi"
)

// ExampleCPIHandler runs example-cpi. Its cypher CPIs run in-process
// through Cypher with the wrapper PDA as signer.
type ExampleCPIHandler struct {
	CypherProgramID solana.PublicKey
	Cypher          *CypherHandler
}

// NewExampleCPIHandler returns a handler for cluster's cypher deployment.
func NewExampleCPIHandler(cluster examplecpi.Cluster, cypher *CypherHandler) *ExampleCPIHandler {
	return &ExampleCPIHandler{CypherProgramID: cluster.CypherProgramID, Cypher: cypher}
}

var (
	discInitialize     = anchor.InstructionDiscriminator(examplecpi.InstructionInitialize)
	discInitializeUser = anchor.InstructionDiscriminator(examplecpi.InstructionInitializeUser)
	discDeposit        = anchor.InstructionDiscriminator(examplecpi.InstructionDeposit)
	discWithdraw       = anchor.InstructionDiscriminator(examplecpi.InstructionWithdraw)
)

// Process dispatches on the instruction discriminator.
func (h *ExampleCPIHandler) Process(ctx *InvokeContext) error {
	if len(ctx.Data) < anchor.DiscriminatorSize {
		return anchor.ErrorCodeInstructionMissing
	}
	args := ctx.Data[anchor.DiscriminatorSize:]
	switch {
	case anchor.HasDiscriminator(ctx.Data, discInitialize):
		ctx.Log("Instruction: Initialize")
		return nil
	case anchor.HasDiscriminator(ctx.Data, discInitializeUser):
		ctx.Log("Instruction: InitializeUser")
		return h.initializeUser(ctx, args)
	case anchor.HasDiscriminator(ctx.Data, discDeposit):
		ctx.Log("Instruction: Deposit")
		return h.deposit(ctx, args)
	case anchor.HasDiscriminator(ctx.Data, discWithdraw):
		ctx.Log("Instruction: Withdraw")
		return h.withdraw(ctx, args)
	}
	return anchor.ErrorCodeInstructionFallbackNotFound
}

type initializeUserArgs struct {
	WrapperBump    uint8
	CypherUserBump uint8
	AccountNumber  uint64
}

func (h *ExampleCPIHandler) initializeUser(ctx *InvokeContext, data []byte) error {
	var args initializeUserArgs
	if err := bin.NewBorshDecoder(data).Decode(&args); err != nil {
		return anchor.ErrorCodeInstructionDidNotDeserialize
	}
	if len(ctx.Accounts) < 6 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	wrapper, group, user, admin := ctx.Key(0), ctx.Key(1), ctx.Key(2), ctx.Key(3)
	if !ctx.IsSigner(3) {
		return anchor.ErrorCodeAccountNotSigner
	}
	if !ctx.Key(4).Equals(h.CypherProgramID) {
		return anchor.ErrorCodeInvalidProgramID
	}
	if !examplecpi.VerifyPDA(wrapper, examplecpi.WrapperSeeds(group, admin), args.WrapperBump, examplecpi.ProgramID) {
		return anchor.ErrorCodeConstraintSeeds
	}
	if ctx.Account(wrapper) != nil {
		return CodeAccountInUse
	}

	rent := rentExempt(examplecpi.UserWrapperSize)
	if err := debit(ctx, admin, rent); err != nil {
		return err
	}
	wdata, err := examplecpi.UserWrapper{Bump: [1]uint8{args.WrapperBump}, Admin: admin}.Encode()
	if err != nil {
		return ErrGeneric
	}
	ctx.SetAccount(wrapper, &Account{Lamports: rent, Owner: examplecpi.ProgramID, Data: wdata})

	userSeeds := examplecpi.CypherUserSeeds(group, wrapper, &args.AccountNumber)
	return h.Cypher.createUser(ctx, group, user, wrapper, admin, userSeeds, args.CypherUserBump, args.AccountNumber)
}

// loadWrapper applies the wrapper account constraints shared by deposit and
// withdraw: seeds with the stored bump, has_one admin and a signing admin.
func (h *ExampleCPIHandler) loadWrapper(ctx *InvokeContext, adminIdx, cypherIdx int) error {
	wrapper, group, admin := ctx.Key(0), ctx.Key(1), ctx.Key(adminIdx)
	acc := ctx.Account(wrapper)
	if acc == nil {
		return anchor.ErrorCodeAccountNotInitialized
	}
	if !acc.Owner.Equals(examplecpi.ProgramID) {
		return anchor.ErrorCodeAccountOwnedByWrongProgram
	}
	w, err := examplecpi.DecodeUserWrapper(acc.Data)
	if err != nil {
		if errors.Is(err, examplecpi.ErrAccountDiscriminator) {
			return anchor.ErrorCodeAccountDiscriminatorMismatch
		}
		return anchor.ErrorCodeAccountDidNotDeserialize
	}
	if !ctx.IsSigner(adminIdx) {
		return anchor.ErrorCodeAccountNotSigner
	}
	if !ctx.Key(cypherIdx).Equals(h.CypherProgramID) {
		return anchor.ErrorCodeInvalidProgramID
	}
	if !w.Admin.Equals(admin) {
		return anchor.ErrorCodeConstraintHasOne
	}
	if !examplecpi.VerifyPDA(wrapper, examplecpi.WrapperSeeds(group, admin), w.Bump[0], examplecpi.ProgramID) {
		return anchor.ErrorCodeConstraintSeeds
	}
	return nil
}

func (h *ExampleCPIHandler) deposit(ctx *InvokeContext, data []byte) error {
	amount, err := decodeAmount(data)
	if err != nil {
		return err
	}
	if len(ctx.Accounts) < 8 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if err := h.loadWrapper(ctx, 5, 6); err != nil {
		return err
	}
	return h.Cypher.deposit(ctx, collateralMove{
		group:      ctx.Key(1),
		user:       ctx.Key(2),
		signer:     ctx.Key(0),
		vault:      ctx.Key(3),
		other:      ctx.Key(4),
		otherOwner: ctx.Key(5),
	}, amount)
}

func (h *ExampleCPIHandler) withdraw(ctx *InvokeContext, data []byte) error {
	amount, err := decodeAmount(data)
	if err != nil {
		return err
	}
	if len(ctx.Accounts) < 9 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if err := h.loadWrapper(ctx, 6, 7); err != nil {
		return err
	}
	return h.Cypher.withdraw(ctx, collateralMove{
		group:       ctx.Key(1),
		user:        ctx.Key(2),
		signer:      ctx.Key(0),
		vault:       ctx.Key(3),
		vaultSigner: ctx.Key(4),
		other:       ctx.Key(5),
		otherOwner:  ctx.Key(6),
	}, amount)
}
