package repository_test

import (
	"encoding/json"
	"testing"

	"github.com/amiraly/banksim/pkg/domain"
	"github.com/amiraly/banksim/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAdmin = domain.AdminCredentials{Username: "admin", Password: "admin123"}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// Builds a bank with real ledger activity: balances, multi-entry histories
// and non-zero lockout counters.
func populatedBank(t *testing.T) *domain.Bank {
	t.Helper()
	bank := domain.NewBank(testAdmin)

	alice, err := bank.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)
	bob, err := bank.CreateAccount("Bob", "bob", "hunter2", "5678", dec(t, "0"))
	require.NoError(t, err)

	require.NoError(t, alice.Deposit(dec(t, "200")))
	require.NoError(t, alice.Withdraw(dec(t, "100")))
	require.NoError(t, alice.Transfer(bob, dec(t, "100"), "1234"))
	require.ErrorIs(t, alice.Transfer(bob, dec(t, "1"), "0000"), domain.ErrIncorrectPin)
	_, err = bank.Login("bob", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	return bank
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	bank := populatedBank(t)

	data, err := json.Marshal(repository.FromBank(bank))
	require.NoError(t, err)

	snap := repository.NewEmptySnapshot()
	require.NoError(t, json.Unmarshal(data, snap))
	restored, err := repository.RestoreBank(snap, testAdmin)
	require.NoError(t, err)

	want := bank.Accounts()
	got := make(map[int64]*domain.Account)
	for _, a := range restored.Accounts() {
		got[a.Number()] = a
	}
	require.Len(t, got, len(want))

	for _, orig := range want {
		a, ok := got[orig.Number()]
		require.True(t, ok, "account %d missing after round trip", orig.Number())
		assert.Equal(t, orig.Name(), a.Name())
		assert.Equal(t, orig.Username(), a.Username())
		assert.Equal(t, orig.Password(), a.Password())
		assert.Equal(t, orig.PIN(), a.PIN())
		assert.True(t, orig.Balance().Equal(a.Balance()), "balance %s != %s", orig.Balance(), a.Balance())
		assert.Equal(t, orig.Locked(), a.Locked())
		assert.Equal(t, orig.LoginAttempts(), a.LoginAttempts())
		assert.Equal(t, orig.PinAttempts(), a.PinAttempts())

		origHistory, history := orig.History(), a.History()
		require.Len(t, history, len(origHistory))
		for i := range origHistory {
			assert.Equal(t, origHistory[i].Type, history[i].Type)
			assert.True(t, origHistory[i].Amount.Equal(history[i].Amount))
			assert.True(t, origHistory[i].Fee.Equal(history[i].Fee))
		}
	}

	assert.Equal(t, bank.Users(), restored.Users())
}

func TestEntryRecordMarshalsAsTriple(t *testing.T) {
	t.Parallel()
	e := repository.EntryRecord{Type: "Deposit", Amount: dec(t, "200"), Fee: dec(t, "0")}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `["Deposit", "200", "0"]`, string(data))

	var back repository.EntryRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Deposit", back.Type)
	assert.True(t, back.Amount.Equal(dec(t, "200")))
}

func TestEntryRecordAcceptsNumericAmounts(t *testing.T) {
	t.Parallel()
	// Snapshots written by the original implementation carry plain numbers.
	var e repository.EntryRecord
	require.NoError(t, json.Unmarshal([]byte(`["Withdrawal", 100, 1.5]`), &e))
	assert.Equal(t, "Withdrawal", e.Type)
	assert.True(t, e.Amount.Equal(dec(t, "100")))
	assert.True(t, e.Fee.Equal(dec(t, "1.5")))
}

func TestEntryRecordRejectsBadShape(t *testing.T) {
	t.Parallel()
	var e repository.EntryRecord
	assert.Error(t, json.Unmarshal([]byte(`["Deposit", 100]`), &e))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"Deposit"}`), &e))
}

func TestUserRecordMarshalsAsPair(t *testing.T) {
	t.Parallel()
	u := repository.UserRecord{Password: "password123", AccountNumber: 123456}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `["password123", 123456]`, string(data))

	var back repository.UserRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, u, back)
}

func TestRestoreBankNilSnapshot(t *testing.T) {
	t.Parallel()
	bank, err := repository.RestoreBank(nil, testAdmin)
	require.NoError(t, err)
	assert.Empty(t, bank.Accounts())
}

func TestRestoreBankNumberFromKey(t *testing.T) {
	t.Parallel()
	snap := repository.NewEmptySnapshot()
	snap.Accounts["654321"] = repository.AccountRecord{
		Name:     "Alice",
		Username: "alice",
		Password: "pw",
		Pin:      "1234",
		Balance:  dec(t, "10"),
	}
	bank, err := repository.RestoreBank(snap, testAdmin)
	require.NoError(t, err)

	a, err := bank.Account(654321)
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Username())
}
