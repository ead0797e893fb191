package gormstore

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amiraly/banksim/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewWithDB(db), mock
}

func testSnapshot(t *testing.T) *repository.Snapshot {
	t.Helper()
	balance, err := decimal.NewFromString("995")
	require.NoError(t, err)
	snap := repository.NewEmptySnapshot()
	snap.Accounts["123456"] = repository.AccountRecord{
		Name:          "Alice",
		Username:      "alice",
		Password:      "password123",
		Pin:           "1234",
		AccountNumber: 123456,
		Balance:       balance,
		TransactionHistory: []repository.EntryRecord{
			{Type: "Account created", Amount: decimal.New(1000, 0)},
		},
	}
	snap.Users["alice"] = repository.UserRecord{Password: "password123", AccountNumber: 123456}
	return snap
}

func TestStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "accounts"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "accounts" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO "users" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(testSnapshot(t)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SaveRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "accounts"`).
		WillReturnError(errors.New("delete error"))
	mock.ExpectRollback()

	err := store.Save(testSnapshot(t))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load(t *testing.T) {
	store, mock := newMockStore(t)

	accountRows := sqlmock.NewRows([]string{
		"account_number", "name", "username", "password", "pin",
		"balance", "transaction_history", "locked", "login_attempts", "pin_attempts",
	}).AddRow(
		int64(123456), "Alice", "alice", "password123", "1234",
		"995", `[["Account created","1000","0"],["Withdrawal","100","1.5"]]`, true, 0, 2,
	)
	mock.ExpectQuery(`SELECT \* FROM "accounts"`).WillReturnRows(accountRows)

	userRows := sqlmock.NewRows([]string{"username", "password", "account_number"}).
		AddRow("alice", "password123", int64(123456))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userRows)

	snap, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, snap.Accounts, "123456")
	rec := snap.Accounts["123456"]
	assert.Equal(t, "Alice", rec.Name)
	assert.Equal(t, "995", rec.Balance.String())
	require.Len(t, rec.TransactionHistory, 2)
	assert.Equal(t, "Withdrawal", rec.TransactionHistory[1].Type)
	assert.True(t, rec.Locked)
	assert.Equal(t, 2, rec.PinAttempts)
	assert.Equal(t, repository.UserRecord{Password: "password123", AccountNumber: 123456}, snap.Users["alice"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelRoundTrip(t *testing.T) {
	t.Parallel()
	snap := testSnapshot(t)
	rec := snap.Accounts["123456"]

	m, err := toModel(rec)
	require.NoError(t, err)
	back, err := toRecord(m)
	require.NoError(t, err)

	assert.Equal(t, rec.AccountNumber, back.AccountNumber)
	assert.True(t, rec.Balance.Equal(back.Balance))
	require.Len(t, back.TransactionHistory, 1)
	assert.Equal(t, "Account created", back.TransactionHistory[0].Type)
}
