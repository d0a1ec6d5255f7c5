package examplecpi

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"examplecpi/internal/anchor"
	"examplecpi/internal/domain"
)

// UserWrapperSize is the account size: discriminator, bump, admin.
const UserWrapperSize = anchor.DiscriminatorSize + 1 + solana.PublicKeyLength

// UserWrapperDiscriminator prefixes UserWrapper account data.
var UserWrapperDiscriminator = anchor.AccountDiscriminator("UserWrapper")

var (
	// ErrAccountDiscriminator is returned when data is not a UserWrapper.
	ErrAccountDiscriminator = errors.New("account discriminator mismatch")
	// ErrAccountNotFound is returned by FetchUserWrapper for missing accounts.
	ErrAccountNotFound = errors.New("account not found")
	// ErrWrongOwner is returned when an account is not owned by the
	// expected program.
	ErrWrongOwner = errors.New("account owned by another program")
)

// UserWrapper records the PDA bump and the admin allowed to act through it.
type UserWrapper struct {
	Bump  [1]uint8
	Admin solana.PublicKey
}

// DecodeUserWrapper parses account data, including the discriminator.
func DecodeUserWrapper(data []byte) (UserWrapper, error) {
	var w UserWrapper
	if !anchor.HasDiscriminator(data, UserWrapperDiscriminator) {
		return w, ErrAccountDiscriminator
	}
	if len(data) < UserWrapperSize {
		return w, fmt.Errorf("user wrapper: %d bytes, want %d", len(data), UserWrapperSize)
	}
	if err := bin.NewBorshDecoder(data[anchor.DiscriminatorSize:]).Decode(&w); err != nil {
		return w, fmt.Errorf("decode user wrapper: %w", err)
	}
	return w, nil
}

// Encode returns the account data for w, including the discriminator.
func (w UserWrapper) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, UserWrapperSize))
	buf.Write(UserWrapperDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FetchUserWrapper reads and decodes the wrapper at addr.
func FetchUserWrapper(ctx context.Context, client domain.RPCClient, addr solana.PublicKey) (UserWrapper, error) {
	data, err := fetchAccount(ctx, client, addr, ProgramID)
	if err != nil {
		return UserWrapper{}, err
	}
	return DecodeUserWrapper(data)
}

// fetchAccount returns the data of addr after checking it is owned by owner.
func fetchAccount(ctx context.Context, client domain.RPCClient, addr, owner solana.PublicKey) ([]byte, error) {
	res, err := client.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
		}
		return nil, fmt.Errorf("get account %s: %w", addr, err)
	}
	if res.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if !res.Value.Owner.Equals(owner) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrWrongOwner, addr, res.Value.Owner)
	}
	return res.GetBinary(), nil
}
