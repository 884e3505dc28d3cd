package domain

import "errors"

// Validation errors raised by the aggregate or its command handlers. They
// propagate unchanged to the dispatch caller and are never retried.
var (
	ErrAlreadyOpened     = errors.New("account already opened")
	ErrAlreadyClosed     = errors.New("account already closed")
	ErrAccountClosed     = errors.New("account is closed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("account not found")
	ErrAlreadyExists     = errors.New("account already exists")
)
