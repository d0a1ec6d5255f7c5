package examplecpi

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PDA seed prefixes.
const (
	SeedAccountWrapper     = "account_wrapper"
	SeedCypherUser         = "cypher_user"
	SeedDexMarketAuthority = "dex_market_authority"
	SeedOpenOrders         = "open_orders"
)

// WrapperSeeds returns the seeds of the wrapper PDA without the bump.
func WrapperSeeds(group, admin solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedAccountWrapper), group.Bytes(), admin.Bytes()}
}

// DeriveWrapper finds the UserWrapper PDA owned by example-cpi for admin in
// group, and its bump.
func DeriveWrapper(group, admin solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(WrapperSeeds(group, admin), ProgramID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive wrapper: %w", err)
	}
	return addr, bump, nil
}

// CypherUserSeeds returns the seeds of a cypher user PDA without the bump.
// A nil accountNumber gives the legacy single-account seeds.
func CypherUserSeeds(group, owner solana.PublicKey, accountNumber *uint64) [][]byte {
	seeds := [][]byte{[]byte(SeedCypherUser), group.Bytes(), owner.Bytes()}
	if accountNumber != nil {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], *accountNumber)
		seeds = append(seeds, n[:])
	}
	return seeds
}

// DeriveCypherUser finds the cypher user PDA of owner in group.
func DeriveCypherUser(cypherProgram, group, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(CypherUserSeeds(group, owner, nil), cypherProgram)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive cypher user: %w", err)
	}
	return addr, bump, nil
}

// DeriveCypherUserWithNumber finds the cypher user PDA for one of several
// numbered accounts of owner in group.
func DeriveCypherUserWithNumber(
	cypherProgram, group, owner solana.PublicKey,
	accountNumber uint64,
) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(CypherUserSeeds(group, owner, &accountNumber), cypherProgram)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive cypher user %d: %w", accountNumber, err)
	}
	return addr, bump, nil
}

// DeriveDexMarketAuthority finds the cypher authority of a serum market.
func DeriveDexMarketAuthority(cypherProgram, market solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(SeedDexMarketAuthority), market.Bytes()}, cypherProgram)
}

// OpenOrdersSeeds returns the seeds of a cypher-owned open orders account
// without the bump.
func OpenOrdersSeeds(market, cypherUser solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedOpenOrders), market.Bytes(), cypherUser.Bytes()}
}

// DeriveOpenOrders finds the open orders account cypher keeps for cypherUser
// on a serum market.
func DeriveOpenOrders(cypherProgram, market, cypherUser solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(OpenOrdersSeeds(market, cypherUser), cypherProgram)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive open orders: %w", err)
	}
	return addr, bump, nil
}

// nonceSigner is the serum style signer: the program address of key and an
// 8 byte little-endian nonce, with no bump search.
func nonceSigner(key solana.PublicKey, nonce uint64, programID solana.PublicKey) (solana.PublicKey, error) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)
	return solana.CreateProgramAddress([][]byte{key.Bytes(), n[:]}, programID)
}

// DexVaultSigner returns the signer of a serum market's vaults.
func DexVaultSigner(nonce uint64, market, dexProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, err := nonceSigner(market, nonce, dexProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("dex vault signer: %w", err)
	}
	return addr, nil
}

// VerifyPDA reports whether addr is the program address for seeds and bump.
func VerifyPDA(addr solana.PublicKey, seeds [][]byte, bump uint8, programID solana.PublicKey) bool {
	withBump := append(append([][]byte(nil), seeds...), []byte{bump})
	got, err := solana.CreateProgramAddress(withBump, programID)
	return err == nil && got.Equals(addr)
}
