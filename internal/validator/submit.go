package validator

import (
	"github.com/gagliardetto/solana-go"
)

// Submit verifies and executes tx. With preflight, a failing transaction is
// rejected and leaves no trace; without it, the fee is charged and a failed
// status is recorded.
func (l *Ledger) Submit(tx *solana.Transaction, skipPreflight bool) (solana.Signature, *rpcError) {
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, &rpcError{Code: codeSignatureVerification, Message: "Transaction signature verification failure"}
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, &rpcError{Code: codeSignatureVerification, Message: "Transaction signature verification failure"}
	}
	sig := tx.Signatures[0]

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.statuses[sig]; ok {
		return sig, simulationFailed("This transaction has already been processed", nil)
	}
	if _, ok := l.recent[tx.Message.RecentBlockhash]; !ok {
		return sig, simulationFailed("Blockhash not found", nil)
	}
	for _, ci := range tx.Message.Instructions {
		programID, err := tx.ResolveProgramIDIndex(ci.ProgramIDIndex)
		if err != nil {
			return sig, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		if _, ok := l.programs[programID]; !ok {
			return sig, simulationFailed("Attempt to load a program that does not exist", nil)
		}
	}

	payer := tx.Message.AccountKeys[0]
	fee := uint64(len(tx.Signatures)) * l.lamportsPerSignature
	payerAcc, ok := l.accounts[payer]
	if !ok || payerAcc.Lamports < fee {
		return sig, simulationFailed("Attempt to debit an account but found no record of a prior credit.", nil)
	}

	// The fee is taken before execution; a failed instruction keeps it
	// charged unless preflight rejects the transaction.
	payerAcc.Lamports -= fee
	exec, err := l.executeLocked(tx)
	if err != nil {
		payerAcc.Lamports += fee
		return sig, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}
	if exec.err != nil && !skipPreflight {
		payerAcc.Lamports += fee
		return sig, simulationFailed(describeInstructionError(exec.index, exec.err), map[string]any{
			"err":  instructionError(exec.index, exec.err),
			"logs": exec.logs,
		})
	}

	st := &status{slot: l.slot}
	if exec.err != nil {
		st.err = instructionError(exec.index, exec.err)
	}
	l.statuses[sig] = st
	l.advanceLocked()
	return sig, nil
}

// Airdrop credits lamports to pub and records a successful status under a
// fresh signature.
func (l *Ledger) Airdrop(pub solana.PublicKey, lamports uint64) solana.Signature {
	var sig solana.Signature
	copy(sig[:], sha256Sum(append(pub.Bytes(), solana.NewWallet().PublicKey().Bytes()...)))
	copy(sig[32:], sha256Sum(sig[:32]))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditLocked(pub, lamports)
	l.statuses[sig] = &status{slot: l.slot}
	l.advanceLocked()
	return sig
}

// signatureStatus returns the status of sig and advances it one commitment
// level, as if a block was observed between polls.
func (l *Ledger) signatureStatus(sig solana.Signature) (*status, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.statuses[sig]
	if !ok {
		return nil, false
	}
	out := *st
	if st.level < len(commitmentLevels)-1 {
		st.level++
	}
	return &out, true
}

func simulationFailed(msg string, data any) *rpcError {
	return &rpcError{Code: codeSimulationFailed, Message: "Transaction simulation failed: " + msg, Data: data}
}
