package errors

import (
	"fmt"

	"strainchain/jsonx"
)

// LedgerErrorCode represents standardized error codes for ledger and
// mining operations
type LedgerErrorCode string

const (
	// General errors
	ErrCodeInternal LedgerErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidInput   LedgerErrorCode = "invalid_input"
	ErrCodeInvalidParent  LedgerErrorCode = "invalid_parent"
	ErrCodeRecordNotFound LedgerErrorCode = "record_not_found"

	// Chain errors
	ErrCodeChainIntegrity LedgerErrorCode = "chain_integrity"

	// Mining errors
	ErrCodeMiningExhausted    LedgerErrorCode = "mining_exhausted"
	ErrCodeBackendUnavailable LedgerErrorCode = "backend_unavailable"
	ErrCodeBackendRuntime     LedgerErrorCode = "backend_runtime"
)

// LedgerError is a standardized error carrying a stable code alongside a
// human-readable message
type LedgerError struct {
	Code    LedgerErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	out, _ := jsonx.Marshal(LedgerError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(out)
}

// Is matches any LedgerError with the same code, so wrapped errors still
// answer to the package sentinels below.
func (e *LedgerError) Is(target error) bool {
	other, ok := target.(*LedgerError)
	return ok && other.Code == e.Code
}

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrInput              = NewError(ErrCodeInvalidInput, "Input is missing or invalid")
	ErrInvalidParent      = NewError(ErrCodeInvalidParent, "Parent genome digest is unknown")
	ErrRecordNotFound     = NewError(ErrCodeRecordNotFound, "Ledger record could not be found")
	ErrChainIntegrity     = NewError(ErrCodeChainIntegrity, "Record violates chain integrity")
	ErrMiningExhausted    = NewError(ErrCodeMiningExhausted, "Proof-of-work search exhausted its attempt ceiling")
	ErrBackendUnavailable = NewError(ErrCodeBackendUnavailable, "Parallel mining backend is unavailable")
	ErrBackendRuntime     = NewError(ErrCodeBackendRuntime, "Parallel mining backend failed mid-search")
)

// NewError creates a new LedgerError and returns it as error interface
func NewError(code LedgerErrorCode, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches context to a coded error while keeping the code matchable.
func Wrap(err error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
