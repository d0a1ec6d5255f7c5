package validator

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"examplecpi/internal/anchor"
	"examplecpi/internal/examplecpi"
)

// Simulated cypher error codes.
const (
	CypherErrInsufficientCollateral = anchor.ErrorCodeUserOffset
	CypherErrInvalidUser            = anchor.ErrorCodeUserOffset + 1
	CypherErrCollateralNotEmpty     = anchor.ErrorCodeUserOffset + 2
)

// CypherUserSize is the size of the simulated cypher user account.
const CypherUserSize = anchor.DiscriminatorSize + 32 + 32 + 32 + 8 + 8

// OpenOrdersSize is the size of a serum open orders account.
const OpenOrdersSize = 3228

var cypherUserDiscriminator = anchor.AccountDiscriminator("CypherUser")

// CypherUser is the part of a cypher user account the simulation tracks.
type CypherUser struct {
	Authority     solana.PublicKey
	Group         solana.PublicKey
	Delegate      solana.PublicKey
	AccountNumber uint64
	Deposited     uint64
}

func (u CypherUser) encode() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, CypherUserSize))
	buf.Write(cypherUserDiscriminator[:])
	// Fixed-size fields only; encoding cannot fail.
	_ = bin.NewBorshEncoder(buf).Encode(u)
	return buf.Bytes()
}

func decodeCypherUser(data []byte) (CypherUser, error) {
	var u CypherUser
	if !anchor.HasDiscriminator(data, cypherUserDiscriminator) {
		return u, anchor.ErrorCodeAccountDiscriminatorMismatch
	}
	if err := bin.NewBorshDecoder(data[anchor.DiscriminatorSize:]).Decode(&u); err != nil {
		return u, anchor.ErrorCodeAccountDidNotDeserialize
	}
	return u, nil
}

// CypherUser returns the simulated cypher user at addr.
func (l *Ledger) CypherUser(addr solana.PublicKey) (CypherUser, error) {
	acc, ok := l.Account(addr)
	if !ok {
		return CypherUser{}, anchor.ErrorCodeAccountNotInitialized
	}
	return decodeCypherUser(acc.Data)
}

// CreateCypherGroup stores a cypher group for cluster with an empty quote
// vault owned by the group's vault signer, and returns its address.
func (l *Ledger) CreateCypherGroup(cluster examplecpi.Cluster) (solana.PublicKey, examplecpi.CypherGroup, error) {
	addr := solana.NewWallet().PublicKey()
	g := examplecpi.CypherGroup{Authority: solana.NewWallet().PublicKey(), QuoteMint: cluster.QuoteMint}
	var signer solana.PublicKey
	for ; ; g.VaultSignerNonce++ {
		s, err := g.VaultSigner(addr, cluster.CypherProgramID)
		if err == nil {
			signer = s
			break
		}
	}
	g.QuoteVault = l.CreateTokenAccount(cluster.QuoteMint, signer, 0)
	data, err := g.Encode()
	if err != nil {
		return solana.PublicKey{}, g, fmt.Errorf("encode cypher group: %w", err)
	}
	l.SetAccount(addr, Account{
		Lamports: rentExempt(len(data)),
		Owner:    cluster.CypherProgramID,
		Data:     data,
	})
	return addr, g, nil
}

// CypherHandler runs the subset of cypher that example-cpi and the cypher
// client call: user accounts, delegation, quote collateral and open orders.
type CypherHandler struct {
	ProgramID    solana.PublicKey
	DexProgramID solana.PublicKey
}

// NewCypherHandler returns a handler for cluster's cypher deployment.
func NewCypherHandler(cluster examplecpi.Cluster) *CypherHandler {
	return &CypherHandler{ProgramID: cluster.CypherProgramID, DexProgramID: cluster.DexProgramID}
}

var (
	discInitCypherUser     = anchor.InstructionDiscriminator(examplecpi.CypherInitCypherUser)
	discCreateCypherUser   = anchor.InstructionDiscriminator(examplecpi.CypherCreateCypherUser)
	discCloseCypherUser    = anchor.InstructionDiscriminator(examplecpi.CypherCloseCypherUser)
	discSetDelegate        = anchor.InstructionDiscriminator(examplecpi.CypherSetDelegate)
	discDepositCollateral  = anchor.InstructionDiscriminator(examplecpi.CypherDepositCollateral)
	discWithdrawCollateral = anchor.InstructionDiscriminator(examplecpi.CypherWithdrawCollateral)
)

// Process dispatches on the anchor discriminator, or on the serum tag for
// the forwarded open orders calls.
func (h *CypherHandler) Process(ctx *InvokeContext) error {
	if tag, ok := dexTag(ctx.Data); ok {
		switch tag {
		case examplecpi.DexInitOpenOrders:
			ctx.Log("Instruction: InitOpenOrders")
			return h.initOpenOrders(ctx)
		case examplecpi.DexCloseOpenOrders:
			ctx.Log("Instruction: CloseOpenOrders")
			return h.closeOpenOrders(ctx)
		}
		return anchor.ErrorCodeInstructionFallbackNotFound
	}
	if len(ctx.Data) < anchor.DiscriminatorSize {
		return anchor.ErrorCodeInstructionMissing
	}
	args := ctx.Data[anchor.DiscriminatorSize:]
	switch {
	case anchor.HasDiscriminator(ctx.Data, discInitCypherUser):
		ctx.Log("Instruction: InitCypherUser")
		return h.initCypherUser(ctx, args)
	case anchor.HasDiscriminator(ctx.Data, discCreateCypherUser):
		ctx.Log("Instruction: CreateCypherUser")
		return h.createCypherUser(ctx, args)
	case anchor.HasDiscriminator(ctx.Data, discCloseCypherUser):
		ctx.Log("Instruction: CloseCypherUser")
		return h.closeCypherUser(ctx)
	case anchor.HasDiscriminator(ctx.Data, discSetDelegate):
		ctx.Log("Instruction: SetDelegate")
		return h.setDelegate(ctx)
	case anchor.HasDiscriminator(ctx.Data, discDepositCollateral):
		ctx.Log("Instruction: DepositCollateral")
		return h.depositCollateral(ctx, args)
	case anchor.HasDiscriminator(ctx.Data, discWithdrawCollateral):
		ctx.Log("Instruction: WithdrawCollateral")
		return h.withdrawCollateral(ctx, args)
	}
	return anchor.ErrorCodeInstructionFallbackNotFound
}

func dexTag(data []byte) (uint32, bool) {
	if len(data) != 5 || data[0] != 0 {
		return 0, false
	}
	return bin.LE.Uint32(data[1:]), true
}

func decodeAmount(data []byte) (uint64, error) {
	var amount uint64
	if err := bin.NewBorshDecoder(data).Decode(&amount); err != nil {
		return 0, anchor.ErrorCodeInstructionDidNotDeserialize
	}
	return amount, nil
}

// loadGroup returns the group at addr, which cypher must own.
func (h *CypherHandler) loadGroup(ctx *InvokeContext, addr solana.PublicKey) (examplecpi.CypherGroup, error) {
	acc := ctx.Account(addr)
	if acc == nil {
		return examplecpi.CypherGroup{}, anchor.ErrorCodeAccountNotInitialized
	}
	if !acc.Owner.Equals(h.ProgramID) {
		return examplecpi.CypherGroup{}, anchor.ErrorCodeAccountOwnedByWrongProgram
	}
	g, err := examplecpi.DecodeCypherGroup(acc.Data)
	if err != nil {
		if errors.Is(err, examplecpi.ErrAccountDiscriminator) {
			return g, anchor.ErrorCodeAccountDiscriminatorMismatch
		}
		return g, anchor.ErrorCodeAccountDidNotDeserialize
	}
	return g, nil
}

// createUser stores a new cypher user at the PDA for seeds and bump, paid
// for by payer.
func (h *CypherHandler) createUser(
	ctx *InvokeContext,
	group, user, authority, payer solana.PublicKey,
	seeds [][]byte,
	bump uint8,
	accountNumber uint64,
) error {
	if _, err := h.loadGroup(ctx, group); err != nil {
		return err
	}
	if !examplecpi.VerifyPDA(user, seeds, bump, h.ProgramID) {
		return anchor.ErrorCodeConstraintSeeds
	}
	if ctx.Account(user) != nil {
		return CodeAccountInUse
	}
	rent := rentExempt(CypherUserSize)
	if err := debit(ctx, payer, rent); err != nil {
		return err
	}
	ctx.SetAccount(user, &Account{
		Lamports: rent,
		Owner:    h.ProgramID,
		Data: CypherUser{
			Authority:     authority,
			Group:         group,
			AccountNumber: accountNumber,
		}.encode(),
	})
	return nil
}

// loadUser returns the cypher user at addr after checking it belongs to
// group and that signer is its authority or, when allowDelegate is set, its
// delegate.
func (h *CypherHandler) loadUser(
	ctx *InvokeContext,
	addr, group, signer solana.PublicKey,
	allowDelegate bool,
) (*Account, CypherUser, error) {
	acc := ctx.Account(addr)
	if acc == nil {
		return nil, CypherUser{}, anchor.ErrorCodeAccountNotInitialized
	}
	if !acc.Owner.Equals(h.ProgramID) {
		return nil, CypherUser{}, anchor.ErrorCodeAccountOwnedByWrongProgram
	}
	u, err := decodeCypherUser(acc.Data)
	if err != nil {
		return nil, CypherUser{}, err
	}
	if !u.Group.Equals(group) {
		return nil, CypherUser{}, CypherErrInvalidUser
	}
	delegated := allowDelegate && !u.Delegate.IsZero() && u.Delegate.Equals(signer)
	if !u.Authority.Equals(signer) && !delegated {
		return nil, CypherUser{}, CypherErrInvalidUser
	}
	return acc, u, nil
}

// quoteVault checks that addr is the group's quote vault and returns it.
func (h *CypherHandler) quoteVault(
	ctx *InvokeContext,
	g examplecpi.CypherGroup,
	group, addr solana.PublicKey,
) (*Account, tokenAccount, error) {
	if !addr.Equals(g.QuoteVault) {
		return nil, tokenAccount{}, anchor.ErrorCodeConstraintAddress
	}
	signer, err := g.VaultSigner(group, h.ProgramID)
	if err != nil {
		return nil, tokenAccount{}, anchor.ErrorCodeConstraintSeeds
	}
	return quoteTokenAccount(ctx, addr, g.QuoteMint, signer)
}

// quoteTokenAccount checks that the token account at addr holds mint and,
// unless owner is zero, belongs to owner.
func quoteTokenAccount(ctx *InvokeContext, addr, mint, owner solana.PublicKey) (*Account, tokenAccount, error) {
	acc := ctx.Account(addr)
	if acc == nil {
		return nil, tokenAccount{}, anchor.ErrorCodeAccountNotInitialized
	}
	tok, err := decodeTokenAccount(acc)
	if err != nil {
		return nil, tokenAccount{}, anchor.ErrorCodeAccountOwnedByWrongProgram
	}
	if !tok.mint.Equals(mint) || (!owner.IsZero() && !tok.owner.Equals(owner)) {
		return nil, tokenAccount{}, anchor.ErrorCodeConstraintRaw
	}
	return acc, tok, nil
}

// collateralMove names the accounts of one deposit or withdrawal. Other is
// the source of a deposit or the destination of a withdrawal.
type collateralMove struct {
	group, user, signer solana.PublicKey
	vault, other        solana.PublicKey
	vaultSigner         solana.PublicKey
	// otherOwner, when set, must own the other token account.
	otherOwner solana.PublicKey
}

func (h *CypherHandler) deposit(ctx *InvokeContext, m collateralMove, amount uint64) error {
	if m.vault.Equals(m.other) {
		return ErrInvalidArgument
	}
	g, err := h.loadGroup(ctx, m.group)
	if err != nil {
		return err
	}
	userAcc, user, err := h.loadUser(ctx, m.user, m.group, m.signer, true)
	if err != nil {
		return err
	}
	vault, vaultTok, err := h.quoteVault(ctx, g, m.group, m.vault)
	if err != nil {
		return err
	}
	src, srcTok, err := quoteTokenAccount(ctx, m.other, g.QuoteMint, m.otherOwner)
	if err != nil {
		return err
	}
	if srcTok.amount < amount {
		return CodeInsufficientFunds
	}

	setTokenAmount(src, srcTok.amount-amount)
	setTokenAmount(vault, vaultTok.amount+amount)
	user.Deposited += amount
	userAcc.Data = user.encode()
	ctx.Log("deposited %d, collateral %d", amount, user.Deposited)
	return nil
}

func (h *CypherHandler) withdraw(ctx *InvokeContext, m collateralMove, amount uint64) error {
	if m.vault.Equals(m.other) {
		return ErrInvalidArgument
	}
	g, err := h.loadGroup(ctx, m.group)
	if err != nil {
		return err
	}
	signer, err := g.VaultSigner(m.group, h.ProgramID)
	if err != nil || !signer.Equals(m.vaultSigner) {
		return anchor.ErrorCodeConstraintAddress
	}
	userAcc, user, err := h.loadUser(ctx, m.user, m.group, m.signer, false)
	if err != nil {
		return err
	}
	vault, vaultTok, err := h.quoteVault(ctx, g, m.group, m.vault)
	if err != nil {
		return err
	}
	dst, dstTok, err := quoteTokenAccount(ctx, m.other, g.QuoteMint, m.otherOwner)
	if err != nil {
		return err
	}
	if user.Deposited < amount {
		return CypherErrInsufficientCollateral
	}
	if vaultTok.amount < amount {
		return CodeInsufficientFunds
	}

	setTokenAmount(vault, vaultTok.amount-amount)
	setTokenAmount(dst, dstTok.amount+amount)
	user.Deposited -= amount
	userAcc.Data = user.encode()
	ctx.Log("withdrew %d, collateral %d", amount, user.Deposited)
	return nil
}

type initCypherUserArgs struct {
	Bump uint8
}

func (h *CypherHandler) initCypherUser(ctx *InvokeContext, data []byte) error {
	var args initCypherUserArgs
	if err := bin.NewBorshDecoder(data).Decode(&args); err != nil {
		return anchor.ErrorCodeInstructionDidNotDeserialize
	}
	if len(ctx.Accounts) < 4 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) {
		return anchor.ErrorCodeAccountNotSigner
	}
	group, user, owner := ctx.Key(0), ctx.Key(1), ctx.Key(2)
	seeds := examplecpi.CypherUserSeeds(group, owner, nil)
	return h.createUser(ctx, group, user, owner, owner, seeds, args.Bump, 0)
}

type createCypherUserArgs struct {
	Bump          uint8
	AccountNumber uint64
}

func (h *CypherHandler) createCypherUser(ctx *InvokeContext, data []byte) error {
	var args createCypherUserArgs
	if err := bin.NewBorshDecoder(data).Decode(&args); err != nil {
		return anchor.ErrorCodeInstructionDidNotDeserialize
	}
	if len(ctx.Accounts) < 5 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) || !ctx.IsSigner(3) {
		return anchor.ErrorCodeAccountNotSigner
	}
	group, user, owner, payer := ctx.Key(0), ctx.Key(1), ctx.Key(2), ctx.Key(3)
	seeds := examplecpi.CypherUserSeeds(group, owner, &args.AccountNumber)
	return h.createUser(ctx, group, user, owner, payer, seeds, args.Bump, args.AccountNumber)
}

func (h *CypherHandler) closeCypherUser(ctx *InvokeContext) error {
	if len(ctx.Accounts) < 3 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) {
		return anchor.ErrorCodeAccountNotSigner
	}
	group, addr, signer := ctx.Key(0), ctx.Key(1), ctx.Key(2)
	if _, err := h.loadGroup(ctx, group); err != nil {
		return err
	}
	acc, user, err := h.loadUser(ctx, addr, group, signer, false)
	if err != nil {
		return err
	}
	if user.Deposited != 0 {
		return CypherErrCollateralNotEmpty
	}
	return closeAccount(ctx, addr, acc, signer)
}

func (h *CypherHandler) setDelegate(ctx *InvokeContext) error {
	if len(ctx.Accounts) < 4 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) {
		return anchor.ErrorCodeAccountNotSigner
	}
	group, addr, signer, delegate := ctx.Key(0), ctx.Key(1), ctx.Key(2), ctx.Key(3)
	if _, err := h.loadGroup(ctx, group); err != nil {
		return err
	}
	acc, user, err := h.loadUser(ctx, addr, group, signer, false)
	if err != nil {
		return err
	}
	user.Delegate = delegate
	acc.Data = user.encode()
	return nil
}

func (h *CypherHandler) depositCollateral(ctx *InvokeContext, data []byte) error {
	amount, err := decodeAmount(data)
	if err != nil {
		return err
	}
	if len(ctx.Accounts) < 6 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) {
		return anchor.ErrorCodeAccountNotSigner
	}
	return h.deposit(ctx, collateralMove{
		group:      ctx.Key(0),
		user:       ctx.Key(1),
		signer:     ctx.Key(2),
		vault:      ctx.Key(3),
		other:      ctx.Key(4),
		otherOwner: ctx.Key(2),
	}, amount)
}

func (h *CypherHandler) withdrawCollateral(ctx *InvokeContext, data []byte) error {
	amount, err := decodeAmount(data)
	if err != nil {
		return err
	}
	if len(ctx.Accounts) < 7 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) {
		return anchor.ErrorCodeAccountNotSigner
	}
	return h.withdraw(ctx, collateralMove{
		group:       ctx.Key(0),
		user:        ctx.Key(1),
		signer:      ctx.Key(2),
		vaultSigner: ctx.Key(3),
		vault:       ctx.Key(4),
		other:       ctx.Key(5),
	}, amount)
}

// openOrders checks the dex program and returns the expected open orders
// address of user on market.
func (h *CypherHandler) openOrders(ctx *InvokeContext, dexIdx int, market, user solana.PublicKey) (solana.PublicKey, error) {
	if !ctx.Key(dexIdx).Equals(h.DexProgramID) {
		return solana.PublicKey{}, anchor.ErrorCodeInvalidProgramID
	}
	oo, _, err := examplecpi.DeriveOpenOrders(h.ProgramID, market, user)
	if err != nil {
		return solana.PublicKey{}, anchor.ErrorCodeConstraintSeeds
	}
	return oo, nil
}

func (h *CypherHandler) initOpenOrders(ctx *InvokeContext) error {
	if len(ctx.Accounts) < 10 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) || !ctx.IsSigner(3) {
		return anchor.ErrorCodeAccountNotSigner
	}
	group, user, payer, signer, market := ctx.Key(0), ctx.Key(1), ctx.Key(2), ctx.Key(3), ctx.Key(4)
	if _, err := h.loadGroup(ctx, group); err != nil {
		return err
	}
	if _, _, err := h.loadUser(ctx, user, group, signer, true); err != nil {
		return err
	}
	authority, _, err := examplecpi.DeriveDexMarketAuthority(h.ProgramID, market)
	if err != nil || !authority.Equals(ctx.Key(5)) {
		return anchor.ErrorCodeConstraintSeeds
	}
	oo, err := h.openOrders(ctx, 9, market, user)
	if err != nil {
		return err
	}
	if !oo.Equals(ctx.Key(6)) {
		return anchor.ErrorCodeConstraintSeeds
	}
	if ctx.Account(oo) != nil {
		return CodeAccountInUse
	}
	rent := rentExempt(OpenOrdersSize)
	if err := debit(ctx, payer, rent); err != nil {
		return err
	}
	ctx.SetAccount(oo, &Account{Lamports: rent, Owner: h.DexProgramID, Data: make([]byte, OpenOrdersSize)})
	return nil
}

func (h *CypherHandler) closeOpenOrders(ctx *InvokeContext) error {
	if len(ctx.Accounts) < 6 {
		return anchor.ErrorCodeAccountNotEnoughKeys
	}
	if !ctx.IsSigner(2) {
		return anchor.ErrorCodeAccountNotSigner
	}
	group, user, signer, market := ctx.Key(0), ctx.Key(1), ctx.Key(2), ctx.Key(3)
	if _, err := h.loadGroup(ctx, group); err != nil {
		return err
	}
	if _, _, err := h.loadUser(ctx, user, group, signer, false); err != nil {
		return err
	}
	oo, err := h.openOrders(ctx, 5, market, user)
	if err != nil {
		return err
	}
	if !oo.Equals(ctx.Key(4)) {
		return anchor.ErrorCodeConstraintSeeds
	}
	acc := ctx.Account(oo)
	if acc == nil {
		return anchor.ErrorCodeAccountNotInitialized
	}
	return closeAccount(ctx, oo, acc, signer)
}

// closeAccount moves acc's lamports to dst and deletes it.
func closeAccount(ctx *InvokeContext, addr solana.PublicKey, acc *Account, dst solana.PublicKey) error {
	lamports := acc.Lamports
	acc.Lamports = 0
	to := ctx.Account(dst)
	if to == nil {
		to = &Account{Owner: solana.SystemProgramID}
		ctx.SetAccount(dst, to)
	}
	to.Lamports += lamports
	ctx.SetAccount(addr, nil)
	return nil
}
