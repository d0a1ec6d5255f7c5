package validator

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Ledger defaults.
const (
	DefaultLamportsPerSignature uint64 = 5000
	maxRecentBlockhashes               = 300
	// TokenAccountSize is the SPL token account layout size.
	TokenAccountSize = 165
)

// ErrNotTokenAccount is returned for accounts that are not SPL token accounts.
var ErrNotTokenAccount = errors.New("not a token account")

// Account is the in-memory state of one address.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
	Executable bool
}

func (a *Account) clone() *Account {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// commitment levels a status walks through.
var commitmentLevels = []string{"processed", "confirmed", "finalized"}

type status struct {
	slot  uint64
	err   any
	level int
}

// Ledger holds accounts, recent blockhashes and signature statuses.
type Ledger struct {
	mu sync.Mutex

	slot        uint64
	blockhash   solana.Hash
	recent      map[solana.Hash]struct{}
	recentOrder []solana.Hash

	accounts map[solana.PublicKey]*Account
	statuses map[solana.Signature]*status
	programs map[solana.PublicKey]ProgramHandler

	lamportsPerSignature uint64
}

// NewLedger returns a ledger at slot 1 with no accounts and no programs.
func NewLedger() *Ledger {
	l := &Ledger{
		recent:               make(map[solana.Hash]struct{}),
		accounts:             make(map[solana.PublicKey]*Account),
		statuses:             make(map[solana.Signature]*status),
		programs:             make(map[solana.PublicKey]ProgramHandler),
		lamportsPerSignature: DefaultLamportsPerSignature,
	}
	l.advanceLocked()
	return l
}

// Register installs h as the program at id.
func (l *Ledger) Register(id solana.PublicKey, h ProgramHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.programs[id] = h
	if _, ok := l.accounts[id]; !ok {
		l.accounts[id] = &Account{Lamports: 1, Owner: solana.BPFLoaderUpgradeableProgramID, Executable: true}
	}
}

// Fund credits lamports to pub, creating a system account when needed.
func (l *Ledger) Fund(pub solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creditLocked(pub, lamports)
}

func (l *Ledger) creditLocked(pub solana.PublicKey, lamports uint64) {
	acc, ok := l.accounts[pub]
	if !ok {
		acc = &Account{Owner: solana.SystemProgramID}
		l.accounts[pub] = acc
	}
	acc.Lamports += lamports
}

// SetAccount stores a copy of acc at pub.
func (l *Ledger) SetAccount(pub solana.PublicKey, acc Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[pub] = acc.clone()
}

// Account returns a copy of the account at pub.
func (l *Ledger) Account(pub solana.PublicKey) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[pub]
	if !ok {
		return Account{}, false
	}
	return *acc.clone(), true
}

// CreateTokenAccount creates a fresh SPL token account for mint owned by
// owner holding amount, and returns its address.
func (l *Ledger) CreateTokenAccount(mint, owner solana.PublicKey, amount uint64) solana.PublicKey {
	addr := solana.NewWallet().PublicKey()
	l.SetAccount(addr, Account{
		Lamports: rentExempt(TokenAccountSize),
		Owner:    solana.TokenProgramID,
		Data:     encodeTokenAccount(mint, owner, amount),
	})
	return addr
}

// TokenBalance returns the amount held by the token account at pub.
func (l *Ledger) TokenBalance(pub solana.PublicKey) (uint64, error) {
	acc, ok := l.Account(pub)
	if !ok {
		return 0, fmt.Errorf("%w: %s does not exist", ErrNotTokenAccount, pub)
	}
	tok, err := decodeTokenAccount(&acc)
	if err != nil {
		return 0, err
	}
	return tok.amount, nil
}

// Slot returns the current slot.
func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

// advanceLocked moves to the next slot with a new blockhash.
func (l *Ledger) advanceLocked() {
	l.slot++
	var seed [40]byte
	copy(seed[:32], l.blockhash[:])
	binary.LittleEndian.PutUint64(seed[32:], l.slot)
	l.blockhash = solana.HashFromBytes(sha256Sum(seed[:]))

	l.recent[l.blockhash] = struct{}{}
	l.recentOrder = append(l.recentOrder, l.blockhash)
	if len(l.recentOrder) > maxRecentBlockhashes {
		delete(l.recent, l.recentOrder[0])
		l.recentOrder = l.recentOrder[1:]
	}
}

func sha256Sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// rentExempt approximates the rent-exempt minimum for size bytes.
func rentExempt(size int) uint64 {
	return uint64(size+128) * 6960
}

// SPL token account layout offsets.
const (
	tokenMintOffset   = 0
	tokenOwnerOffset  = 32
	tokenAmountOffset = 64
	tokenStateOffset  = 108
)

type tokenAccount struct {
	mint   solana.PublicKey
	owner  solana.PublicKey
	amount uint64
}

func encodeTokenAccount(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[tokenMintOffset:], mint[:])
	copy(data[tokenOwnerOffset:], owner[:])
	binary.LittleEndian.PutUint64(data[tokenAmountOffset:], amount)
	data[tokenStateOffset] = 1
	return data
}

func decodeTokenAccount(acc *Account) (tokenAccount, error) {
	if !acc.Owner.Equals(solana.TokenProgramID) || len(acc.Data) != TokenAccountSize {
		return tokenAccount{}, ErrNotTokenAccount
	}
	return tokenAccount{
		mint:   solana.PublicKeyFromBytes(acc.Data[tokenMintOffset : tokenMintOffset+32]),
		owner:  solana.PublicKeyFromBytes(acc.Data[tokenOwnerOffset : tokenOwnerOffset+32]),
		amount: binary.LittleEndian.Uint64(acc.Data[tokenAmountOffset:]),
	}, nil
}

func setTokenAmount(acc *Account, amount uint64) {
	binary.LittleEndian.PutUint64(acc.Data[tokenAmountOffset:], amount)
}
