package domain

import (
	interfaces "examplecpi/internal/domain/interfaces"
	types "examplecpi/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	ProgramName = types.ProgramName
	Fingerprint = types.Fingerprint
	Commitment  = types.Commitment
	TxRecord    = types.TxRecord
)

// Commitment levels.
const (
	CommitmentProcessed = types.CommitmentProcessed
	CommitmentConfirmed = types.CommitmentConfirmed
	CommitmentFinalized = types.CommitmentFinalized
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	RPCClient     = interfaces.RPCClient
	TxSender      = interfaces.TxSender
	WalletStore   = interfaces.WalletStore
	HistoryStore  = interfaces.HistoryStore
	WalletService = interfaces.WalletService
)
