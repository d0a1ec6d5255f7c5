package anchor

import "fmt"

// ErrorCode is a custom program error code as reported in
// {"InstructionError":[i,{"Custom":code}]}.
type ErrorCode uint32

// Framework error codes raised by Anchor-generated code. User errors start
// at ErrorCodeUserOffset.
const (
	ErrorCodeInstructionMissing           ErrorCode = 100
	ErrorCodeInstructionFallbackNotFound  ErrorCode = 101
	ErrorCodeInstructionDidNotDeserialize ErrorCode = 102

	ErrorCodeConstraintMut     ErrorCode = 2000
	ErrorCodeConstraintHasOne  ErrorCode = 2001
	ErrorCodeConstraintSigner  ErrorCode = 2002
	ErrorCodeConstraintRaw     ErrorCode = 2003
	ErrorCodeConstraintSeeds   ErrorCode = 2006
	ErrorCodeConstraintAddress ErrorCode = 2012

	ErrorCodeAccountDiscriminatorAlreadySet ErrorCode = 3000
	ErrorCodeAccountDiscriminatorMismatch   ErrorCode = 3002
	ErrorCodeAccountDidNotDeserialize       ErrorCode = 3003
	ErrorCodeAccountNotEnoughKeys           ErrorCode = 3005
	ErrorCodeAccountOwnedByWrongProgram     ErrorCode = 3007
	ErrorCodeInvalidProgramID               ErrorCode = 3008
	ErrorCodeAccountNotSigner               ErrorCode = 3010
	ErrorCodeAccountNotInitialized          ErrorCode = 3012

	ErrorCodeUserOffset ErrorCode = 6000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeInstructionMissing:             "InstructionMissing",
	ErrorCodeInstructionFallbackNotFound:    "InstructionFallbackNotFound",
	ErrorCodeInstructionDidNotDeserialize:   "InstructionDidNotDeserialize",
	ErrorCodeConstraintMut:                  "ConstraintMut",
	ErrorCodeConstraintHasOne:               "ConstraintHasOne",
	ErrorCodeConstraintSigner:               "ConstraintSigner",
	ErrorCodeConstraintRaw:                  "ConstraintRaw",
	ErrorCodeConstraintSeeds:                "ConstraintSeeds",
	ErrorCodeConstraintAddress:              "ConstraintAddress",
	ErrorCodeAccountDiscriminatorAlreadySet: "AccountDiscriminatorAlreadySet",
	ErrorCodeAccountDiscriminatorMismatch:   "AccountDiscriminatorMismatch",
	ErrorCodeAccountDidNotDeserialize:       "AccountDidNotDeserialize",
	ErrorCodeAccountNotEnoughKeys:           "AccountNotEnoughKeys",
	ErrorCodeAccountOwnedByWrongProgram:     "AccountOwnedByWrongProgram",
	ErrorCodeInvalidProgramID:               "InvalidProgramId",
	ErrorCodeAccountNotSigner:               "AccountNotSigner",
	ErrorCodeAccountNotInitialized:          "AccountNotInitialized",
}

// String returns the Anchor name of a framework code, or "Custom(<n>)".
func (c ErrorCode) String() string {
	if n, ok := errorCodeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Custom(%d)", uint32(c))
}

// Error lets handlers return a code directly.
func (c ErrorCode) Error() string {
	return fmt.Sprintf("custom program error: 0x%x (%s)", uint32(c), c.String())
}

// DescribeError names code using the framework table, then the IDL.
func DescribeError(code uint32, idl *IDL) string {
	if n, ok := errorCodeNames[ErrorCode(code)]; ok {
		return n
	}
	if idl != nil {
		if e, ok := idl.ErrorByCode(code); ok {
			if e.Msg != "" {
				return e.Name + ": " + e.Msg
			}
			return e.Name
		}
	}
	return ErrorCode(code).String()
}
