// Package domain holds the ledger core: the Account aggregate with its
// balance mutation rules, fee computation and transaction log, and the Bank
// registry that owns all accounts and the username index. It has no I/O; the
// CLI, the HTTP surface and the persistence stores are collaborators that
// call into this package.
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Fee rates are applied to the requested amount and charged on top of it;
// the balance check is against amount+fee (gross fee model).
var (
	withdrawalFeeRate = decimal.RequireFromString("0.015")
	transferFeeRate   = decimal.RequireFromString("0.035")
)

// maxAuthAttempts is the shared strike limit for login and transfer-PIN
// failures. Reaching it sets the lockout flag.
const maxAuthAttempts = 3

// Entry is a single transaction-log record. The log is append-only and
// insertion order is preserved for history reconstruction.
type Entry struct {
	Type   string
	Amount decimal.Decimal
	Fee    decimal.Decimal
}

// Account is the ledger unit. The balance can only change through Deposit,
// Withdraw and Transfer; every validation failure leaves the account
// untouched.
//
// Invariants:
//   - The balance never goes negative.
//   - Every balance change appends a matching log entry.
//   - Once locked, the account rejects login and transfer until an admin
//     unlock resets the counters.
type Account struct {
	number        int64
	name          string
	username      string
	password      string
	pin           string
	balance       decimal.Decimal
	history       []Entry
	locked        bool
	loginAttempts int
	pinAttempts   int
}

// Builder constructs Account instances. It is also the hydration path for the
// persistence layer, which restores balance, history and lockout counters
// verbatim from a snapshot.
type Builder struct {
	number        int64
	name          string
	username      string
	password      string
	pin           string
	balance       decimal.Decimal
	history       []Entry
	locked        bool
	loginAttempts int
	pinAttempts   int
}

// NewAccount starts building an account.
func NewAccount() *Builder {
	return &Builder{}
}

// WithNumber sets the account number. Mandatory; the Bank assigns it.
func (b *Builder) WithNumber(number int64) *Builder {
	b.number = number
	return b
}

// WithName sets the holder's display name.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithCredentials sets username, password and 4-digit PIN.
func (b *Builder) WithCredentials(username, password, pin string) *Builder {
	b.username = username
	b.password = password
	b.pin = pin
	return b
}

// WithBalance sets the opening (or restored) balance.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithHistory restores a transaction log from a snapshot.
func (b *Builder) WithHistory(history []Entry) *Builder {
	b.history = history
	return b
}

// WithLockState restores the lockout flag and attempt counters from a
// snapshot. Fresh accounts start unlocked with zeroed counters.
func (b *Builder) WithLockState(locked bool, loginAttempts, pinAttempts int) *Builder {
	b.locked = locked
	b.loginAttempts = loginAttempts
	b.pinAttempts = pinAttempts
	return b
}

// Build validates the builder state and returns the account. An account with
// no restored history is considered freshly opened and logs an
// "Account created" entry for its opening balance.
func (b *Builder) Build() (*Account, error) {
	if b.number == 0 {
		return nil, errors.New("account number is required")
	}
	if b.username == "" {
		return nil, errors.New("username is required")
	}
	if b.balance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	a := &Account{
		number:        b.number,
		name:          b.name,
		username:      b.username,
		password:      b.password,
		pin:           b.pin,
		balance:       b.balance,
		history:       b.history,
		locked:        b.locked,
		loginAttempts: b.loginAttempts,
		pinAttempts:   b.pinAttempts,
	}
	if len(a.history) == 0 {
		a.log("Account created", a.balance, decimal.Zero)
	}
	return a, nil
}

// Number returns the immutable account number.
func (a *Account) Number() int64 { return a.number }

// Name returns the holder's display name.
func (a *Account) Name() string { return a.name }

// Username returns the login username.
func (a *Account) Username() string { return a.username }

// Password returns the stored password. Credentials are kept in the clear;
// hashing is out of scope for this simulator.
func (a *Account) Password() string { return a.password }

// PIN returns the stored transfer PIN.
func (a *Account) PIN() string { return a.pin }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Locked reports whether the account is in the lockout state.
func (a *Account) Locked() bool { return a.locked }

// LoginAttempts returns the consecutive failed-login counter.
func (a *Account) LoginAttempts() int { return a.loginAttempts }

// PinAttempts returns the consecutive failed-PIN counter.
func (a *Account) PinAttempts() int { return a.pinAttempts }

// History returns a copy of the transaction log in insertion order.
func (a *Account) History() []Entry {
	out := make([]Entry, len(a.history))
	copy(out, a.history)
	return out
}

// Deposit adds a positive amount to the balance. Deposits carry no fee.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	a.log("Deposit", amount, decimal.Zero)
	return nil
}

// Withdraw removes amount plus a 1.5% fee from the balance. The fee is
// computed on the requested amount and charged on top; the whole gross total
// must be covered by the balance.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	fee := amount.Mul(withdrawalFeeRate)
	total := amount.Add(fee)
	if total.GreaterThan(a.balance) {
		return ErrInsufficientFunds
	}
	a.balance = a.balance.Sub(total)
	a.log("Withdrawal", amount, fee)
	return nil
}

// Transfer moves amount to the recipient, charging the sender a 3.5% fee on
// top. The operation is PIN-gated: a wrong PIN consumes an attempt and the
// third strike locks the account. A locked account rejects the transfer
// outright, correct PIN or not. On success the sender logs the transfer and
// its fee as two entries and the recipient logs the credit; no state changes
// on any failure.
func (a *Account) Transfer(recipient *Account, amount decimal.Decimal, pin string) error {
	if a.locked {
		return ErrAccountLocked
	}
	if pin != a.pin {
		a.pinAttempts++
		if a.pinAttempts >= maxAuthAttempts {
			a.locked = true
			return ErrAccountLocked
		}
		return fmt.Errorf("%w: %d attempts left", ErrIncorrectPin, maxAuthAttempts-a.pinAttempts)
	}
	a.pinAttempts = 0

	if recipient == nil {
		return ErrAccountNotFound
	}
	if recipient == a || recipient.number == a.number {
		return ErrSelfTransfer
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	fee := amount.Mul(transferFeeRate)
	total := amount.Add(fee)
	if total.GreaterThan(a.balance) {
		return ErrInsufficientFunds
	}

	a.balance = a.balance.Sub(total)
	recipient.balance = recipient.balance.Add(amount)
	a.log(fmt.Sprintf("Transfer to %s", recipient.name), amount, fee)
	a.log("Transfer Fee", fee, fee)
	recipient.log(fmt.Sprintf("Received from %s", a.name), amount, decimal.Zero)
	return nil
}

// VerifyPassword reports whether the given password matches.
func (a *Account) VerifyPassword(password string) bool {
	return a.password == password
}

// RecordLoginFailure increments the failed-login counter and locks the
// account on the third strike. It returns the attempts left before lockout.
func (a *Account) RecordLoginFailure() int {
	a.loginAttempts++
	if a.loginAttempts >= maxAuthAttempts {
		a.locked = true
		return 0
	}
	return maxAuthAttempts - a.loginAttempts
}

// ResetAttempts zeroes both failure counters. Called on successful
// authentication and by the admin unlock.
func (a *Account) ResetAttempts() {
	a.loginAttempts = 0
	a.pinAttempts = 0
}

// Unlock clears the lockout state and resets the counters.
func (a *Account) Unlock() {
	a.locked = false
	a.ResetAttempts()
}

func (a *Account) log(entryType string, amount, fee decimal.Decimal) {
	a.history = append(a.history, Entry{Type: entryType, Amount: amount, Fee: fee})
}
