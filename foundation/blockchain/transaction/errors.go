package transaction

import (
	"errors"
	"fmt"
)

// ValidationError reports a transaction that fails a structural or stateless
// check. Transactions carrying one never reach the ledger.
type ValidationError struct {
	TxID string
	Msg  string
}

// NewValidationError constructs a validation error for the specified
// transaction.
func NewValidationError(txID string, format string, args ...any) *ValidationError {
	return &ValidationError{TxID: txID, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Msg
}

// IsValidationError reports whether the error is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// =============================================================================

// SignatureError reports a signature that does not verify against the claimed
// public key.
type SignatureError struct {
	TxID string
}

// NewSignatureError constructs a signature error for the specified
// transaction.
func NewSignatureError(txID string) *SignatureError {
	return &SignatureError{TxID: txID}
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	return fmt.Sprintf("failed to verify signature for transaction %q", e.TxID)
}

// =============================================================================

// ConflictError reports a transaction rejected by unconfirmed state: another
// pending transaction already claims the same exclusive resource.
type ConflictError struct {
	TxID string
	Msg  string
}

// NewConflictError constructs a conflict error for the specified transaction.
func NewConflictError(txID string, format string, args ...any) *ConflictError {
	return &ConflictError{TxID: txID, Msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return e.Msg
}

// =============================================================================

// InsufficientFundsError reports a sender whose balance cannot cover the
// amount plus fee.
type InsufficientFundsError struct {
	Address string
	Needed  int64
	Balance int64
}

// NewInsufficientFundsError constructs an insufficient funds error.
func NewInsufficientFundsError(address string, needed int64, balance int64) *InsufficientFundsError {
	return &InsufficientFundsError{Address: address, Needed: needed, Balance: balance}
}

// Error implements the error interface.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("account %q has balance %d, needs %d", e.Address, e.Balance, e.Needed)
}
