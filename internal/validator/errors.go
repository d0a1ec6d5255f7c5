package validator

import (
	"errors"
	"fmt"

	"examplecpi/internal/anchor"
)

// CustomError is a program-specific error code, reported as
// {"Custom": code}.
type CustomError uint32

func (e CustomError) Error() string { return fmt.Sprintf("custom program error: 0x%x", uint32(e)) }

// BuiltinError is one of the runtime's named instruction errors.
type BuiltinError string

func (e BuiltinError) Error() string { return string(e) }

// Runtime instruction errors.
const (
	ErrInvalidInstructionData    BuiltinError = "InvalidInstructionData"
	ErrInvalidArgument           BuiltinError = "InvalidArgument"
	ErrMissingRequiredSignature  BuiltinError = "MissingRequiredSignature"
	ErrNotEnoughAccountKeys      BuiltinError = "NotEnoughAccountKeys"
	ErrAccountAlreadyInitialized BuiltinError = "AccountAlreadyInitialized"
	ErrGeneric                   BuiltinError = "GenericError"
)

// Token and system program codes used by the handlers.
const (
	CodeAccountInUse      CustomError = 0
	CodeInsufficientFunds CustomError = 1
)

// Error codes of the JSON-RPC layer.
const (
	codeParseError            = -32700
	codeInvalidRequest        = -32600
	codeMethodNotFound        = -32601
	codeInvalidParams         = -32602
	codeSignatureVerification = -32003
	codeSimulationFailed      = -32002
)

// rpcError is the JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("%d: %s", e.Code, e.Message) }

// instructionError renders a handler error the way the cluster reports it.
func instructionError(index int, err error) map[string]any {
	return map[string]any{"InstructionError": []any{index, instructionErrorValue(err)}}
}

func instructionErrorValue(err error) any {
	var custom CustomError
	if errors.As(err, &custom) {
		return map[string]any{"Custom": uint32(custom)}
	}
	var code anchor.ErrorCode
	if errors.As(err, &code) {
		return map[string]any{"Custom": uint32(code)}
	}
	var builtin BuiltinError
	if errors.As(err, &builtin) {
		return string(builtin)
	}
	return string(ErrGeneric)
}

// describeInstructionError formats the message part of a failed preflight.
func describeInstructionError(index int, err error) string {
	var custom CustomError
	var code anchor.ErrorCode
	switch {
	case errors.As(err, &custom):
		return fmt.Sprintf("Error processing Instruction %d: custom program error: 0x%x", index, uint32(custom))
	case errors.As(err, &code):
		return fmt.Sprintf("Error processing Instruction %d: custom program error: 0x%x", index, uint32(code))
	}
	return fmt.Sprintf("Error processing Instruction %d: %v", index, err)
}
