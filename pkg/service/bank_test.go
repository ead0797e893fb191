package service_test

import (
	"io"
	"log"
	"log/slog"
	"os"
	"testing"

	"github.com/amiraly/banksim/infra/memory"
	"github.com/amiraly/banksim/pkg/domain"
	"github.com/amiraly/banksim/pkg/repository"
	"github.com/amiraly/banksim/pkg/service"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAdmin = domain.AdminCredentials{Username: "admin", Password: "admin123"}

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)

	exitVal := m.Run()
	os.Exit(exitVal)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestService(t *testing.T) (*service.BankService, *memory.Store) {
	t.Helper()
	repo := memory.New()
	bank := domain.NewBank(testAdmin)
	return service.NewBankService(bank, repo, slog.Default()), repo
}

func TestCreateAccountValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	cases := []struct {
		label    string
		name     string
		username string
		pin      string
	}{
		{"missing name", "", "alice", "1234"},
		{"short username", "Alice", "al", "1234"},
		{"short pin", "Alice", "alice", "12"},
		{"non-numeric pin", "Alice", "alice", "abcd"},
	}
	for _, tc := range cases {
		_, err := svc.CreateAccount(tc.name, tc.username, "password123", tc.pin, dec(t, "0"))
		var vErrs validator.ValidationErrors
		assert.ErrorAs(t, err, &vErrs, tc.label)
	}
}

func TestCreateAccountPersists(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t)

	a, err := svc.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Saves())

	snap, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Accounts, 1)
	assert.Contains(t, snap.Users, "alice")
	assert.Equal(t, a.Number(), findAccount(t, snap, a.Number()).AccountNumber)
}

func TestScenarioAliceAndBob(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	alice, err := svc.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)

	balance, err := svc.Deposit(alice.Number(), dec(t, "200"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(t, "1200")), "balance = %s", balance)
	history, err := svc.History(alice.Number())
	require.NoError(t, err)
	assert.Len(t, history, 2)

	balance, err = svc.Withdraw(alice.Number(), dec(t, "100"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(t, "1098.5")), "balance = %s", balance)

	bob, err := svc.CreateAccount("Bob", "bob", "hunter22", "5678", dec(t, "0"))
	require.NoError(t, err)

	require.NoError(t, svc.Transfer(alice.Number(), bob.Number(), dec(t, "100"), "1234"))

	aliceBalance, err := svc.Balance(alice.Number())
	require.NoError(t, err)
	assert.True(t, aliceBalance.Equal(dec(t, "995")), "alice balance = %s", aliceBalance)
	bobBalance, err := svc.Balance(bob.Number())
	require.NoError(t, err)
	assert.True(t, bobBalance.Equal(dec(t, "100")), "bob balance = %s", bobBalance)

	aliceHistory, err := svc.History(alice.Number())
	require.NoError(t, err)
	require.Len(t, aliceHistory, 5)
	assert.Equal(t, "Transfer to Bob", aliceHistory[3].Type)
	assert.Equal(t, "Transfer Fee", aliceHistory[4].Type)

	bobHistory, err := svc.History(bob.Number())
	require.NoError(t, err)
	require.Len(t, bobHistory, 2)
	assert.Equal(t, "Received from Alice", bobHistory[1].Type)
}

func TestTransferFailurePersistsPinCounters(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t)

	alice, err := svc.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)
	bob, err := svc.CreateAccount("Bob", "bob", "hunter22", "5678", dec(t, "0"))
	require.NoError(t, err)

	err = svc.Transfer(alice.Number(), bob.Number(), dec(t, "10"), "0000")
	require.ErrorIs(t, err, domain.ErrIncorrectPin)

	snap, err := repo.Load()
	require.NoError(t, err)
	rec := findAccount(t, snap, alice.Number())
	assert.Equal(t, 1, rec.PinAttempts, "failed PIN attempt must be persisted")
}

func TestLoginLockoutAndUnlockFlow(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t)

	alice, err := svc.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := svc.Login("alice", "wrong")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err = svc.Login("alice", "wrong")
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	// Lock flag reached the snapshot.
	snap, err := repo.Load()
	require.NoError(t, err)
	assert.True(t, findAccount(t, snap, alice.Number()).Locked)

	// Correct password still fails while locked.
	_, err = svc.Login("alice", "password123")
	require.ErrorIs(t, err, domain.ErrAccountLocked)

	require.NoError(t, svc.Unlock(alice.Number()))
	a, err := svc.Login("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, alice.Number(), a.Number())
}

func TestTransferUnknownRecipient(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	alice, err := svc.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)

	err = svc.Transfer(alice.Number(), 999999, dec(t, "10"), "1234")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestListAccounts(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	alice, err := svc.CreateAccount("Alice", "alice", "password123", "1234", dec(t, "1000"))
	require.NoError(t, err)
	_, err = svc.CreateAccount("Bob", "bob", "hunter22", "5678", dec(t, "0"))
	require.NoError(t, err)

	list := svc.ListAccounts()
	require.Len(t, list, 2)
	assert.Equal(t, alice.Number(), list[0].Number)
	assert.Equal(t, "Alice", list[0].Name)
	assert.False(t, list[0].Locked)
}

func findAccount(t *testing.T, snap *repository.Snapshot, number int64) repository.AccountRecord {
	t.Helper()
	for _, rec := range snap.Accounts {
		if rec.AccountNumber == number {
			return rec
		}
	}
	t.Fatalf("account %d not in snapshot", number)
	return repository.AccountRecord{}
}
