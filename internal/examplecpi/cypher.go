package examplecpi

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
	"examplecpi/internal/domain"
)

// Cypher instruction names.
const (
	CypherInitCypherUser     = "init_cypher_user"
	CypherCreateCypherUser   = "create_cypher_user"
	CypherCloseCypherUser    = "close_cypher_user"
	CypherSetDelegate        = "set_delegate"
	CypherDepositCollateral  = "deposit_collateral"
	CypherWithdrawCollateral = "withdraw_collateral"
)

// Serum market instruction tags carried by the cypher open orders calls.
const (
	DexCloseOpenOrders uint32 = 14
	DexInitOpenOrders  uint32 = 15
)

// CypherGroupSize is the size of the group prefix this client reads.
const CypherGroupSize = anchor.DiscriminatorSize + 3*solana.PublicKeyLength + 8

// CypherGroupDiscriminator prefixes cypher group account data.
var CypherGroupDiscriminator = anchor.AccountDiscriminator("CypherGroup")

// CypherGroup is the leading part of a cypher group account: the quote
// token and the vault holding quote collateral.
type CypherGroup struct {
	Authority        solana.PublicKey
	QuoteMint        solana.PublicKey
	QuoteVault       solana.PublicKey
	VaultSignerNonce uint64
}

// DecodeCypherGroup parses account data, including the discriminator. Bytes
// past the known prefix are ignored.
func DecodeCypherGroup(data []byte) (CypherGroup, error) {
	var g CypherGroup
	if !anchor.HasDiscriminator(data, CypherGroupDiscriminator) {
		return g, ErrAccountDiscriminator
	}
	if len(data) < CypherGroupSize {
		return g, fmt.Errorf("cypher group: %d bytes, want at least %d", len(data), CypherGroupSize)
	}
	if err := bin.NewBorshDecoder(data[anchor.DiscriminatorSize:]).Decode(&g); err != nil {
		return g, fmt.Errorf("decode cypher group: %w", err)
	}
	return g, nil
}

// Encode returns the account data for g, including the discriminator.
func (g CypherGroup) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, CypherGroupSize))
	buf.Write(CypherGroupDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// VaultSigner returns the authority of the group's quote vault.
func (g CypherGroup) VaultSigner(group, cypherProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, err := nonceSigner(group, g.VaultSignerNonce, cypherProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("group vault signer: %w", err)
	}
	return addr, nil
}

// FetchCypherGroup reads and decodes the group at addr, which must be owned
// by cypherProgram.
func FetchCypherGroup(
	ctx context.Context,
	client domain.RPCClient,
	addr, cypherProgram solana.PublicKey,
) (CypherGroup, error) {
	data, err := fetchAccount(ctx, client, addr, cypherProgram)
	if err != nil {
		return CypherGroup{}, err
	}
	return DecodeCypherGroup(data)
}

// CypherClient builds calls to the cypher program itself.
type CypherClient struct {
	cluster Cluster
	program *anchor.Program
}

// NewCypherClient returns a client for cluster's cypher deployment. sender
// may be nil when only instructions are built.
func NewCypherClient(cluster Cluster, sender domain.TxSender) *CypherClient {
	spec := anchor.ProgramSpec{Name: "cypher", ID: cluster.CypherProgramID}
	return &CypherClient{cluster: cluster, program: anchor.NewProgram(spec, sender)}
}

// InitCypherUser creates the legacy single cypher user of owner.
func (c *CypherClient) InitCypherUser(group, user, owner solana.PublicKey, bump uint8) *anchor.MethodBuilder {
	return c.program.Method(CypherInitCypherUser).
		Args(bump).
		Accounts(
			solana.Meta(group),
			solana.Meta(user).WRITE(),
			solana.Meta(owner).WRITE().SIGNER(),
			solana.Meta(solana.SystemProgramID),
		)
}

// CreateCypherUser creates the numbered cypher user of owner, paid for by
// payer.
func (c *CypherClient) CreateCypherUser(
	group, user, owner, payer solana.PublicKey,
	bump uint8,
	accountNumber uint64,
) *anchor.MethodBuilder {
	return c.program.Method(CypherCreateCypherUser).
		Args(bump, accountNumber).
		Accounts(
			solana.Meta(group),
			solana.Meta(user).WRITE(),
			solana.Meta(owner).SIGNER(),
			solana.Meta(payer).WRITE().SIGNER(),
			solana.Meta(solana.SystemProgramID),
		)
}

// CloseCypherUser closes an empty cypher user and returns its rent to the
// signer.
func (c *CypherClient) CloseCypherUser(group, user, signer solana.PublicKey) *anchor.MethodBuilder {
	return c.program.Method(CypherCloseCypherUser).
		Accounts(
			solana.Meta(group),
			solana.Meta(user).WRITE(),
			solana.Meta(signer).WRITE().SIGNER(),
		)
}

// SetDelegate lets delegate act for the cypher user.
func (c *CypherClient) SetDelegate(group, user, signer, delegate solana.PublicKey) *anchor.MethodBuilder {
	return c.program.Method(CypherSetDelegate).
		Accounts(
			solana.Meta(group),
			solana.Meta(user).WRITE(),
			solana.Meta(signer).SIGNER(),
			solana.Meta(delegate),
		)
}

// DepositCollateral moves amount of the quote token from source into the
// group vault.
func (c *CypherClient) DepositCollateral(
	group, user, signer, vault, source solana.PublicKey,
	amount uint64,
) *anchor.MethodBuilder {
	return c.program.Method(CypherDepositCollateral).
		Args(amount).
		Accounts(
			solana.Meta(group).WRITE(),
			solana.Meta(user).WRITE(),
			solana.Meta(signer).SIGNER(),
			solana.Meta(vault).WRITE(),
			solana.Meta(source).WRITE(),
			solana.Meta(solana.TokenProgramID),
		)
}

// WithdrawCollateral moves amount of quote collateral out of the group vault.
func (c *CypherClient) WithdrawCollateral(
	group, user, signer, vaultSigner, vault, destination solana.PublicKey,
	amount uint64,
) *anchor.MethodBuilder {
	return c.program.Method(CypherWithdrawCollateral).
		Args(amount).
		Accounts(
			solana.Meta(group).WRITE(),
			solana.Meta(user).WRITE(),
			solana.Meta(signer).SIGNER(),
			solana.Meta(vaultSigner),
			solana.Meta(vault).WRITE(),
			solana.Meta(destination).WRITE(),
			solana.Meta(solana.TokenProgramID),
		)
}

// InitOpenOrders opens the cypher user's open orders account on market. The
// data is the serum instruction cypher forwards to the dex.
func (c *CypherClient) InitOpenOrders(group, user, payer, signer, market solana.PublicKey) (solana.Instruction, error) {
	authority, _, err := DeriveDexMarketAuthority(c.cluster.CypherProgramID, market)
	if err != nil {
		return nil, fmt.Errorf("derive dex market authority: %w", err)
	}
	oo, _, err := DeriveOpenOrders(c.cluster.CypherProgramID, market, user)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.cluster.CypherProgramID, []*solana.AccountMeta{
		solana.Meta(group),
		solana.Meta(user).WRITE(),
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(signer).SIGNER(),
		solana.Meta(market),
		solana.Meta(authority),
		solana.Meta(oo).WRITE(),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(c.cluster.DexProgramID),
	}, DexInstructionData(DexInitOpenOrders)), nil
}

// CloseOpenOrders closes the cypher user's open orders account on market.
func (c *CypherClient) CloseOpenOrders(group, user, signer, market solana.PublicKey) (solana.Instruction, error) {
	oo, _, err := DeriveOpenOrders(c.cluster.CypherProgramID, market, user)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.cluster.CypherProgramID, []*solana.AccountMeta{
		solana.Meta(group),
		solana.Meta(user).WRITE(),
		solana.Meta(signer).WRITE().SIGNER(),
		solana.Meta(market),
		solana.Meta(oo).WRITE(),
		solana.Meta(c.cluster.DexProgramID),
	}, DexInstructionData(DexCloseOpenOrders)), nil
}

// DexInstructionData packs an argument-less serum market instruction:
// version 0 followed by the little-endian tag.
func DexInstructionData(tag uint32) []byte {
	data := make([]byte, 5)
	binary.LittleEndian.PutUint32(data[1:], tag)
	return data
}
