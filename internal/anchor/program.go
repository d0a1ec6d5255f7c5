package anchor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/domain"
)

var (
	// ErrUnknownMethod is returned when the program IDL has no such method.
	ErrUnknownMethod = errors.New("unknown program method")
	// ErrAccountCount is returned when the accounts passed do not match the IDL.
	ErrAccountCount = errors.New("wrong number of accounts")
	// ErrArgCount is returned when the arguments passed do not match the IDL.
	ErrArgCount = errors.New("wrong number of arguments")
	// ErrNoSender is returned by RPC on a Program built without a sender.
	ErrNoSender = errors.New("program has no transaction sender")
)

// Program is a client handle for one deployed program.
type Program struct {
	spec   ProgramSpec
	sender domain.TxSender
}

// NewProgram binds spec to the sender used by Method(...).RPC. sender may be
// nil when only instructions are built.
func NewProgram(spec ProgramSpec, sender domain.TxSender) *Program {
	return &Program{spec: spec, sender: sender}
}

// ID returns the program address.
func (p *Program) ID() solana.PublicKey { return p.spec.ID }

// Name returns the workspace name of the program.
func (p *Program) Name() domain.ProgramName { return p.spec.Name }

// IDL returns the program IDL, or nil.
func (p *Program) IDL() *IDL { return p.spec.IDL }

// Method starts building a call to the named method. Any of camelCase,
// snake_case or kebab-case is accepted.
func (p *Program) Method(name string) *MethodBuilder {
	return &MethodBuilder{program: p, name: snakeCase(name)}
}

// MethodBuilder accumulates the arguments, accounts and signers of one call.
type MethodBuilder struct {
	program  *Program
	name     string
	args     []any
	accounts []*solana.AccountMeta
	signers  []solana.PrivateKey
}

// Args appends borsh-encodable arguments in declaration order.
func (b *MethodBuilder) Args(v ...any) *MethodBuilder {
	b.args = append(b.args, v...)
	return b
}

// Accounts appends account metas in the order of the program's Accounts struct.
func (b *MethodBuilder) Accounts(metas ...*solana.AccountMeta) *MethodBuilder {
	b.accounts = append(b.accounts, metas...)
	return b
}

// Signers adds keys that must sign besides the provider wallet.
func (b *MethodBuilder) Signers(keys ...solana.PrivateKey) *MethodBuilder {
	b.signers = append(b.signers, keys...)
	return b
}

// Name returns the snake_case method name used for the discriminator.
func (b *MethodBuilder) Name() string { return b.name }

// Instruction encodes the call. When the program has an IDL, the method name
// and the account and argument counts are checked against it first.
func (b *MethodBuilder) Instruction() (solana.Instruction, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	data, err := InstructionData(b.name, b.args...)
	if err != nil {
		return nil, err
	}
	accounts := b.accounts
	if accounts == nil {
		accounts = []*solana.AccountMeta{}
	}
	return solana.NewInstruction(b.program.spec.ID, accounts, data), nil
}

// RPC sends the instruction in its own transaction and waits for
// confirmation. Errors from the cluster are returned unmodified.
func (b *MethodBuilder) RPC(ctx context.Context) (solana.Signature, error) {
	if b.program.sender == nil {
		return solana.Signature{}, ErrNoSender
	}
	ix, err := b.Instruction()
	if err != nil {
		return solana.Signature{}, err
	}
	return b.program.sender.SendAndConfirm(ctx, []solana.Instruction{ix}, b.signers...)
}

func (b *MethodBuilder) check() error {
	idl := b.program.spec.IDL
	if idl == nil {
		return nil
	}
	ix, ok := idl.Instruction(b.name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownMethod, b.program.spec.Name, b.name)
	}
	if want := ix.AccountCount(); want != len(b.accounts) {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrAccountCount, b.name, want, len(b.accounts))
	}
	if want := len(ix.Args); want != len(b.args) {
		return fmt.Errorf("%w: %s wants %d, got %d", ErrArgCount, b.name, want, len(b.args))
	}
	return nil
}
