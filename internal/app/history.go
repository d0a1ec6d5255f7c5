package app

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"examplecpi/internal/anchor"
	"examplecpi/internal/domain"
	"examplecpi/internal/examplecpi"
	"examplecpi/internal/logging"
	"examplecpi/internal/provider"
)

// knownInstructions names the instructions the history can label.
var knownInstructions = func() map[anchor.Discriminator]string {
	m := make(map[anchor.Discriminator]string)
	for _, name := range []string{
		examplecpi.InstructionInitialize,
		examplecpi.InstructionInitializeUser,
		examplecpi.InstructionDeposit,
		examplecpi.InstructionWithdraw,
		examplecpi.InstructionFaucetToUser,
	} {
		m[anchor.InstructionDiscriminator(name)] = name
	}
	return m
}()

// historySender records every transaction it sends. A transaction rejected
// before it got a signature, e.g. by preflight, is recorded without one.
type historySender struct {
	next    domain.TxSender
	history domain.HistoryStore
	cluster string
	log     logging.Logger
}

func (h *historySender) SendAndConfirm(
	ctx context.Context,
	instructions []solana.Instruction,
	signers ...solana.PrivateKey,
) (solana.Signature, error) {
	sig, err := h.next.SendAndConfirm(ctx, instructions, signers...)
	if sig.IsZero() && err == nil {
		return sig, err
	}

	rec := domain.TxRecord{
		ID:         uuid.NewString(),
		Cluster:    h.cluster,
		CreatedUTC: time.Now().UTC().Unix(),
	}
	if !sig.IsZero() {
		rec.Signature = sig.String()
	}
	if len(instructions) > 0 {
		rec.ProgramID = instructions[0].ProgramID().String()
		rec.Instruction = instructionName(instructions[0])
	}
	var txErr *provider.TxError
	if errors.As(err, &txErr) {
		rec.Slot = txErr.Slot
		rec.Err = txErr.Error()
	} else if err != nil {
		rec.Err = err.Error()
	}
	if herr := h.history.AppendRecord(rec); herr != nil {
		h.log.Warn("record history", logging.String("signature", rec.Signature), logging.Err(herr))
	}
	return sig, err
}

func instructionName(ix solana.Instruction) string {
	data, err := ix.Data()
	if err != nil || len(data) < anchor.DiscriminatorSize {
		return ""
	}
	var d anchor.Discriminator
	copy(d[:], data)
	return knownInstructions[d]
}
