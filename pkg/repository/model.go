package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/amiraly/banksim/pkg/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is the persisted representation of the whole registry: accounts
// keyed by account number plus the username index. Saving then loading a
// snapshot reproduces an equivalent bank (same balances, logs in order, lock
// flags and attempt counters).
type Snapshot struct {
	Accounts map[string]AccountRecord `json:"accounts"`
	Users    map[string]UserRecord    `json:"users"`
}

// AccountRecord is the serialized form of one account.
type AccountRecord struct {
	Name               string          `json:"name"`
	Username           string          `json:"username"`
	Password           string          `json:"password"`
	Pin                string          `json:"pin"`
	AccountNumber      int64           `json:"account_number"`
	Balance            decimal.Decimal `json:"balance"`
	TransactionHistory []EntryRecord   `json:"transaction_history"`
	Locked             bool            `json:"locked"`
	LoginAttempts      int             `json:"login_attempts"`
	PinAttempts        int             `json:"pin_attempts"`
}

// EntryRecord serializes a transaction-log entry as a [type, amount, fee]
// triple.
type EntryRecord struct {
	Type   string
	Amount decimal.Decimal
	Fee    decimal.Decimal
}

// MarshalJSON encodes the entry as a three-element array.
func (e EntryRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Type, e.Amount, e.Fee})
}

// UnmarshalJSON decodes a [type, amount, fee] array.
func (e *EntryRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("transaction entry: want 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Type); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &e.Amount); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &e.Fee)
}

// UserRecord serializes a username-index value as a
// (password, account_number) pair.
type UserRecord struct {
	Password      string
	AccountNumber int64
}

// MarshalJSON encodes the record as a two-element array.
func (u UserRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{u.Password, u.AccountNumber})
}

// UnmarshalJSON decodes a [password, account_number] array.
func (u *UserRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("user record: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &u.Password); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &u.AccountNumber)
}

// NewEmptySnapshot returns the snapshot of an empty bank. Missing or corrupt
// stores load as this instead of failing startup.
func NewEmptySnapshot() *Snapshot {
	return &Snapshot{
		Accounts: make(map[string]AccountRecord),
		Users:    make(map[string]UserRecord),
	}
}

// FromBank projects the bank state into a snapshot.
func FromBank(b *domain.Bank) *Snapshot {
	snap := NewEmptySnapshot()
	for _, a := range b.Accounts() {
		history := a.History()
		entries := make([]EntryRecord, 0, len(history))
		for _, e := range history {
			entries = append(entries, EntryRecord{Type: e.Type, Amount: e.Amount, Fee: e.Fee})
		}
		key := strconv.FormatInt(a.Number(), 10)
		snap.Accounts[key] = AccountRecord{
			Name:               a.Name(),
			Username:           a.Username(),
			Password:           a.Password(),
			Pin:                a.PIN(),
			AccountNumber:      a.Number(),
			Balance:            a.Balance(),
			TransactionHistory: entries,
			Locked:             a.Locked(),
			LoginAttempts:      a.LoginAttempts(),
			PinAttempts:        a.PinAttempts(),
		}
	}
	for username, ref := range b.Users() {
		snap.Users[username] = UserRecord{Password: ref.Password, AccountNumber: ref.AccountNumber}
	}
	return snap
}

// RestoreBank hydrates a bank from a snapshot. Accounts are rebuilt with
// their balances, histories and lockout counters verbatim; the username index
// is rebuilt from the account records. Accounts are adopted in ascending
// account-number order to keep listings deterministic across restarts.
func RestoreBank(snap *Snapshot, admin domain.AdminCredentials) (*domain.Bank, error) {
	bank := domain.NewBank(admin)
	if snap == nil {
		return bank, nil
	}

	keys := make([]string, 0, len(snap.Accounts))
	for key := range snap.Accounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	accounts := make([]*domain.Account, 0, len(keys))
	for _, key := range keys {
		rec := snap.Accounts[key]
		number := rec.AccountNumber
		if number == 0 {
			// Older snapshots carried the number only in the map key.
			parsed, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("snapshot account %q: %w", key, err)
			}
			number = parsed
		}
		history := make([]domain.Entry, 0, len(rec.TransactionHistory))
		for _, e := range rec.TransactionHistory {
			history = append(history, domain.Entry{Type: e.Type, Amount: e.Amount, Fee: e.Fee})
		}
		a, err := domain.NewAccount().
			WithNumber(number).
			WithName(rec.Name).
			WithCredentials(rec.Username, rec.Password, rec.Pin).
			WithBalance(rec.Balance).
			WithHistory(history).
			WithLockState(rec.Locked, rec.LoginAttempts, rec.PinAttempts).
			Build()
		if err != nil {
			return nil, fmt.Errorf("snapshot account %q: %w", key, err)
		}
		accounts = append(accounts, a)
	}
	bank.Restore(accounts)
	return bank, nil
}
