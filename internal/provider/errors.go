package provider

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var (
	// ErrProviderURLUnset is returned when no cluster URL is configured.
	ErrProviderURLUnset = errors.New("ANCHOR_PROVIDER_URL is not defined")
	// ErrWalletUnset is returned when no wallet keygen file is configured.
	ErrWalletUnset = errors.New("ANCHOR_WALLET is not set")
	// ErrConfirmTimeout is returned when a signature does not reach the
	// requested commitment before the confirm timeout.
	ErrConfirmTimeout = errors.New("transaction was not confirmed in time")
	// ErrNoBlockhash is returned when the node answers without a blockhash.
	ErrNoBlockhash = errors.New("rpc returned no blockhash")
)

// TxError reports a transaction that landed but failed to execute.
type TxError struct {
	Signature solana.Signature
	Slot      uint64
	// Err is the raw error object from the signature status, e.g.
	// {"InstructionError":[0,{"Custom":101}]}.
	Err any
}

func (e *TxError) Error() string {
	raw, err := json.Marshal(e.Err)
	if err != nil {
		return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
	}
	return fmt.Sprintf("transaction %s failed: %s", e.Signature, raw)
}

// InstructionError returns the failing instruction index and its error
// object when Err has the InstructionError shape.
func (e *TxError) InstructionError() (int, any, bool) {
	return instructionError(e.Err)
}

func instructionError(v any) (int, any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, nil, false
	}
	pair, ok := m["InstructionError"].([]any)
	if !ok || len(pair) != 2 {
		return 0, nil, false
	}
	idx, ok := toUint64(pair[0])
	if !ok {
		return 0, nil, false
	}
	return int(idx), pair[1], true
}

// CustomCode returns the program error code of a Custom instruction error.
// Anchor framework errors start at 100, user errors at 6000.
func (e *TxError) CustomCode() (uint32, bool) {
	return customCode(e.Err)
}

func customCode(v any) (uint32, bool) {
	_, ierr, ok := instructionError(v)
	if !ok {
		return 0, false
	}
	m, ok := ierr.(map[string]any)
	if !ok {
		return 0, false
	}
	code, ok := toUint64(m["Custom"])
	if !ok {
		return 0, false
	}
	return uint32(code), true
}

// ProgramErrorCode returns the custom program error code carried by err,
// either a landed *TxError or a preflight failure whose RPC error data
// holds the simulation error.
func ProgramErrorCode(err error) (uint32, bool) {
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr.CustomCode()
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		data, ok := rpcErr.Data.(map[string]any)
		if !ok {
			return 0, false
		}
		return customCode(data["err"])
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		return uint64(n), n >= 0
	case json.Number:
		i, err := n.Int64()
		return uint64(i), err == nil && i >= 0
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	}
	return 0, false
}
