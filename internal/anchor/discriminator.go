package anchor

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// DiscriminatorSize is the length of instruction and account discriminators.
const DiscriminatorSize = 8

// Discriminator prefixes Anchor instruction data and account data.
type Discriminator [DiscriminatorSize]byte

// Namespaces used by Anchor when hashing names.
const (
	NamespaceGlobal  = "global"
	NamespaceAccount = "account"
)

// Sighash returns the first 8 bytes of sha256("<namespace>:<name>").
func Sighash(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// InstructionDiscriminator returns the discriminator of a snake_case
// instruction name, e.g. "initialize_user".
func InstructionDiscriminator(name string) Discriminator {
	return Sighash(NamespaceGlobal, name)
}

// AccountDiscriminator returns the discriminator of an account type name,
// e.g. "UserWrapper".
func AccountDiscriminator(name string) Discriminator {
	return Sighash(NamespaceAccount, name)
}

// InstructionData returns the instruction discriminator followed by the
// borsh encoding of each argument in order.
func InstructionData(name string, args ...any) ([]byte, error) {
	d := InstructionDiscriminator(name)

	buf := bytes.NewBuffer(nil)
	buf.Write(d[:])
	enc := bin.NewBorshEncoder(buf)
	for i, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("encode arg %d of %s: %w", i, name, err)
		}
	}
	return buf.Bytes(), nil
}

// HasDiscriminator reports whether data starts with d.
func HasDiscriminator(data []byte, d Discriminator) bool {
	return len(data) >= DiscriminatorSize && bytes.Equal(data[:DiscriminatorSize], d[:])
}
