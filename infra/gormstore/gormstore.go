// Package gormstore persists bank snapshots in Postgres via GORM. Each save
// is a full-state overwrite inside one transaction, keeping the same snapshot
// semantics as the JSON file store.
package gormstore

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/amiraly/banksim/pkg/repository"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type accountModel struct {
	AccountNumber      int64  `gorm:"column:account_number;primaryKey;autoIncrement:false"`
	Name               string `gorm:"column:name"`
	Username           string `gorm:"column:username;uniqueIndex"`
	Password           string `gorm:"column:password"`
	Pin                string `gorm:"column:pin"`
	Balance            string `gorm:"column:balance"`
	TransactionHistory string `gorm:"column:transaction_history;type:text"`
	Locked             bool   `gorm:"column:locked"`
	LoginAttempts      int    `gorm:"column:login_attempts"`
	PinAttempts        int    `gorm:"column:pin_attempts"`
}

func (accountModel) TableName() string { return "accounts" }

type userModel struct {
	Username      string `gorm:"column:username;primaryKey"`
	Password      string `gorm:"column:password"`
	AccountNumber int64  `gorm:"column:account_number"`
}

func (userModel) TableName() string { return "users" }

// Store is a Postgres-backed snapshot repository.
type Store struct {
	db *gorm.DB
}

// New connects to Postgres and migrates the snapshot tables.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: connect: %w", err)
	}
	if err := db.AutoMigrate(&accountModel{}, &userModel{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing GORM handle. Used by tests with sqlmock.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reassembles the snapshot from the account and user tables.
func (s *Store) Load() (*repository.Snapshot, error) {
	var accounts []accountModel
	if err := s.db.Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("gormstore: load accounts: %w", err)
	}
	var users []userModel
	if err := s.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("gormstore: load users: %w", err)
	}

	snap := repository.NewEmptySnapshot()
	for _, m := range accounts {
		rec, err := toRecord(m)
		if err != nil {
			return nil, err
		}
		snap.Accounts[strconv.FormatInt(m.AccountNumber, 10)] = rec
	}
	for _, u := range users {
		snap.Users[u.Username] = repository.UserRecord{
			Password:      u.Password,
			AccountNumber: u.AccountNumber,
		}
	}
	return snap, nil
}

// Save overwrites both tables with the snapshot contents in one transaction.
func (s *Store) Save(snap *repository.Snapshot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&accountModel{}).Error; err != nil {
			return fmt.Errorf("gormstore: clear accounts: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&userModel{}).Error; err != nil {
			return fmt.Errorf("gormstore: clear users: %w", err)
		}
		for _, rec := range snap.Accounts {
			m, err := toModel(rec)
			if err != nil {
				return err
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("gormstore: insert account %d: %w", rec.AccountNumber, err)
			}
		}
		for username, ref := range snap.Users {
			u := userModel{Username: username, Password: ref.Password, AccountNumber: ref.AccountNumber}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("gormstore: insert user %s: %w", username, err)
			}
		}
		return nil
	})
}

func toModel(rec repository.AccountRecord) (accountModel, error) {
	history, err := json.Marshal(rec.TransactionHistory)
	if err != nil {
		return accountModel{}, fmt.Errorf("gormstore: encode history: %w", err)
	}
	return accountModel{
		AccountNumber:      rec.AccountNumber,
		Name:               rec.Name,
		Username:           rec.Username,
		Password:           rec.Password,
		Pin:                rec.Pin,
		Balance:            rec.Balance.String(),
		TransactionHistory: string(history),
		Locked:             rec.Locked,
		LoginAttempts:      rec.LoginAttempts,
		PinAttempts:        rec.PinAttempts,
	}, nil
}

func toRecord(m accountModel) (repository.AccountRecord, error) {
	rec := repository.AccountRecord{
		Name:          m.Name,
		Username:      m.Username,
		Password:      m.Password,
		Pin:           m.Pin,
		AccountNumber: m.AccountNumber,
		Locked:        m.Locked,
		LoginAttempts: m.LoginAttempts,
		PinAttempts:   m.PinAttempts,
	}
	balance, err := decimal.NewFromString(m.Balance)
	if err != nil {
		return rec, fmt.Errorf("gormstore: account %d balance: %w", m.AccountNumber, err)
	}
	rec.Balance = balance
	if m.TransactionHistory != "" {
		if err := json.Unmarshal([]byte(m.TransactionHistory), &rec.TransactionHistory); err != nil {
			return rec, fmt.Errorf("gormstore: account %d history: %w", m.AccountNumber, err)
		}
	}
	return rec, nil
}
