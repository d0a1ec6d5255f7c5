package validator

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramHandler executes instructions addressed to one program.
type ProgramHandler interface {
	Process(ctx *InvokeContext) error
}

// InvokeContext is what a handler sees of one instruction. Account changes go
// to a transaction-wide overlay and commit only if every instruction succeeds.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
	Slot      uint64

	tx *txState
}

// Account returns the account at pub as seen by this transaction so far, or
// nil if it does not exist.
func (c *InvokeContext) Account(pub solana.PublicKey) *Account {
	return c.tx.account(pub)
}

// SetAccount replaces the account at pub for the rest of the transaction.
func (c *InvokeContext) SetAccount(pub solana.PublicKey, acc *Account) {
	c.tx.overlay[pub] = acc
}

// Log appends a program log line.
func (c *InvokeContext) Log(format string, args ...any) {
	c.tx.logs = append(c.tx.logs, "Program log: "+fmt.Sprintf(format, args...))
}

// IsSigner reports whether the account at index i signed the transaction.
func (c *InvokeContext) IsSigner(i int) bool {
	return i < len(c.Accounts) && c.Accounts[i].IsSigner
}

// Key returns the address of the account at index i.
func (c *InvokeContext) Key(i int) solana.PublicKey {
	return c.Accounts[i].PublicKey
}

// txState is the copy-on-write view of the ledger during one transaction.
type txState struct {
	base    map[solana.PublicKey]*Account
	overlay map[solana.PublicKey]*Account
	logs    []string
}

func newTxState(base map[solana.PublicKey]*Account) *txState {
	return &txState{base: base, overlay: make(map[solana.PublicKey]*Account)}
}

func (t *txState) account(pub solana.PublicKey) *Account {
	if acc, ok := t.overlay[pub]; ok {
		return acc
	}
	acc, ok := t.base[pub]
	if !ok {
		return nil
	}
	c := acc.clone()
	t.overlay[pub] = c
	return c
}

func (t *txState) commit() {
	for pub, acc := range t.overlay {
		if acc == nil {
			delete(t.base, pub)
			continue
		}
		t.base[pub] = acc
	}
}

// execution is the outcome of running a transaction's instructions.
type execution struct {
	index int
	err   error
	logs  []string
}

// executeLocked runs every instruction of tx against an overlay and commits
// it when all succeed. Callers hold l.mu and have checked program existence.
func (l *Ledger) executeLocked(tx *solana.Transaction) (*execution, error) {
	state := newTxState(l.accounts)
	for i, ci := range tx.Message.Instructions {
		programID, err := tx.ResolveProgramIDIndex(ci.ProgramIDIndex)
		if err != nil {
			return nil, err
		}
		metas, err := ci.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return nil, err
		}
		state.logs = append(state.logs, fmt.Sprintf("Program %s invoke [1]", programID))
		ctx := &InvokeContext{
			ProgramID: programID,
			Accounts:  metas,
			Data:      ci.Data,
			Slot:      l.slot,
			tx:        state,
		}
		if err := l.programs[programID].Process(ctx); err != nil {
			state.logs = append(state.logs, fmt.Sprintf("Program %s failed: %v", programID, err))
			return &execution{index: i, err: err, logs: state.logs}, nil
		}
		state.logs = append(state.logs, fmt.Sprintf("Program %s success", programID))
	}
	state.commit()
	return &execution{logs: state.logs}, nil
}
