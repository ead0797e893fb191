package domain

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Account numbers are drawn from a fixed 6-digit range. Draws are retried
// until an unused number is found.
const (
	accountNumberMin  = 100000
	accountNumberSpan = 900000
)

// AdminCredentials is the out-of-band administrator login, separate from the
// user registry. It is injected at construction rather than hidden in a
// package global.
type AdminCredentials struct {
	Username string
	Password string
}

// UserRef is the username-index value: the password plus the account number
// it resolves to.
type UserRef struct {
	Password      string
	AccountNumber int64
}

// Bank is the registry aggregate. It owns the set of accounts keyed by
// account number, the username index, and the admin credentials, and it
// orchestrates credential checks. Accounts are created once and never
// deleted; listings iterate in insertion order.
type Bank struct {
	admin    AdminCredentials
	accounts map[int64]*Account
	order    []int64
	users    map[string]UserRef
}

// NewBank creates an empty bank with the given admin credentials.
func NewBank(admin AdminCredentials) *Bank {
	return &Bank{
		admin:    admin,
		accounts: make(map[int64]*Account),
		users:    make(map[string]UserRef),
	}
}

// CreateAccount opens an account with a freshly drawn account number and
// registers it in both indexes. The username must be unused and the opening
// balance non-negative; on violation nothing is created.
func (b *Bank) CreateAccount(name, username, password, pin string, initialBalance decimal.Decimal) (*Account, error) {
	if _, exists := b.users[username]; exists {
		return nil, ErrDuplicateUsername
	}
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	a, err := NewAccount().
		WithNumber(b.nextAccountNumber()).
		WithName(name).
		WithCredentials(username, password, pin).
		WithBalance(initialBalance).
		Build()
	if err != nil {
		return nil, err
	}
	b.register(a)
	return a, nil
}

// Login resolves the username and checks the password. A locked account
// fails without touching counters. A wrong password consumes an attempt and
// the third strike locks the account; success resets the counters.
func (b *Bank) Login(username, password string) (*Account, error) {
	ref, ok := b.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: username not found", ErrInvalidCredentials)
	}
	a, ok := b.accounts[ref.AccountNumber]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if a.Locked() {
		return nil, ErrAccountLocked
	}
	if !a.VerifyPassword(password) {
		remaining := a.RecordLoginFailure()
		if remaining == 0 {
			return nil, ErrAccountLocked
		}
		return nil, fmt.Errorf("%w: %d attempts left", ErrInvalidCredentials, remaining)
	}
	a.ResetAttempts()
	return a, nil
}

// AdminLogin checks the fixed admin credentials. Admin access bypasses the
// per-account lock and PIN rules.
func (b *Bank) AdminLogin(username, password string) error {
	if username != b.admin.Username || password != b.admin.Password {
		return ErrInvalidCredentials
	}
	return nil
}

// Account looks up an account by number.
func (b *Bank) Account(number int64) (*Account, error) {
	a, ok := b.accounts[number]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// Accounts returns all accounts in insertion order.
func (b *Bank) Accounts() []*Account {
	out := make([]*Account, 0, len(b.order))
	for _, number := range b.order {
		out = append(out, b.accounts[number])
	}
	return out
}

// Users returns a copy of the username index.
func (b *Bank) Users() map[string]UserRef {
	out := make(map[string]UserRef, len(b.users))
	for username, ref := range b.users {
		out[username] = ref
	}
	return out
}

// Unlock clears the lockout state of the given account (admin operation).
func (b *Bank) Unlock(number int64) error {
	a, ok := b.accounts[number]
	if !ok {
		return ErrAccountNotFound
	}
	a.Unlock()
	return nil
}

// Restore adopts hydrated accounts into an empty bank, rebuilding the
// username index. Used by the persistence layer when loading a snapshot.
func (b *Bank) Restore(accounts []*Account) {
	for _, a := range accounts {
		b.register(a)
	}
}

func (b *Bank) register(a *Account) {
	b.accounts[a.Number()] = a
	b.order = append(b.order, a.Number())
	b.users[a.Username()] = UserRef{Password: a.Password(), AccountNumber: a.Number()}
}

func (b *Bank) nextAccountNumber() int64 {
	for {
		n := int64(rand.Intn(accountNumberSpan) + accountNumberMin)
		if _, taken := b.accounts[n]; !taken {
			return n
		}
	}
}
