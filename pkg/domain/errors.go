package domain

import "errors"

var (
	// ErrInvalidAmount is returned when a deposit, withdrawal or transfer
	// amount is not positive, or an opening balance is negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when the balance cannot cover the
	// requested amount plus the operation fee.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidCredentials is returned on a bad username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountLocked is returned when an operation is blocked by the
	// lockout state. Only an admin unlock clears it.
	ErrAccountLocked = errors.New("account locked")

	// ErrIncorrectPin is returned on a transfer PIN mismatch. Each mismatch
	// consumes an attempt; the third one locks the account.
	ErrIncorrectPin = errors.New("incorrect PIN")

	// ErrDuplicateUsername is returned when opening an account with a
	// username that is already registered.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrSelfTransfer is returned when the transfer recipient is the sender.
	ErrSelfTransfer = errors.New("cannot transfer to own account")

	// ErrAccountNotFound is returned when an account lookup misses.
	ErrAccountNotFound = errors.New("account not found")
)
