// Package service provides the orchestration layer between the ledger core
// and its collaborators (CLI and HTTP surface). Every mutating operation runs
// under a single bank-wide mutex and is followed by a full-state snapshot
// save through the injected repository.
package service

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/amiraly/banksim/pkg/domain"
	"github.com/amiraly/banksim/pkg/repository"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// BankService wraps the Bank aggregate with locking, input validation,
// logging and persistence.
type BankService struct {
	mu       sync.Mutex
	bank     *domain.Bank
	repo     repository.Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewBankService creates the service around an already-hydrated bank.
func NewBankService(bank *domain.Bank, repo repository.Repository, logger *slog.Logger) *BankService {
	return &BankService{
		bank:     bank,
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

type createAccountInput struct {
	Name     string `validate:"required"`
	Username string `validate:"required,min=3,alphanum"`
	Password string `validate:"required,min=4"`
	Pin      string `validate:"required,len=4,numeric"`
}

// CreateAccount validates the input, opens the account and persists the new
// state. Returns the created account.
func (s *BankService) CreateAccount(name, username, password, pin string, initialBalance decimal.Decimal) (*domain.Account, error) {
	in := createAccountInput{Name: name, Username: username, Password: password, Pin: pin}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.bank.CreateAccount(name, username, password, pin, initialBalance)
	if err != nil {
		return nil, err
	}
	if err := s.persist(); err != nil {
		return nil, err
	}
	s.logger.Info("account created", "number", a.Number(), "username", a.Username())
	return a, nil
}

// Login delegates the credential check to the bank and persists the counter
// changes it causes, on success and failure alike.
func (s *BankService) Login(username, password string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.bank.Login(username, password)
	// Both outcomes may have touched attempt counters or the lock flag.
	if perr := s.persist(); perr != nil {
		return nil, perr
	}
	if err != nil {
		s.logger.Warn("login failed", "username", username, "error", err)
		return nil, err
	}
	return a, nil
}

// AdminLogin checks the configured admin credentials.
func (s *BankService) AdminLogin(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.AdminLogin(username, password)
}

// Deposit credits the account and persists.
func (s *BankService) Deposit(number int64, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.bank.Account(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := a.Deposit(amount); err != nil {
		return decimal.Zero, err
	}
	if err := s.persist(); err != nil {
		return decimal.Zero, err
	}
	s.logger.Info("deposit", "number", number, "amount", amount)
	return a.Balance(), nil
}

// Withdraw debits the account plus fee and persists.
func (s *BankService) Withdraw(number int64, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.bank.Account(number)
	if err != nil {
		return decimal.Zero, err
	}
	if err := a.Withdraw(amount); err != nil {
		return decimal.Zero, err
	}
	if err := s.persist(); err != nil {
		return decimal.Zero, err
	}
	s.logger.Info("withdrawal", "number", number, "amount", amount)
	return a.Balance(), nil
}

// Transfer resolves both parties and runs the PIN-gated transfer. The
// snapshot is saved even when the transfer fails, because a wrong PIN
// mutates the attempt counters.
func (s *BankService) Transfer(from, to int64, amount decimal.Decimal, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sender, err := s.bank.Account(from)
	if err != nil {
		return err
	}
	recipient, err := s.bank.Account(to)
	if err != nil {
		return err
	}
	err = sender.Transfer(recipient, amount, pin)
	if perr := s.persist(); perr != nil {
		return perr
	}
	if err != nil {
		s.logger.Warn("transfer failed", "from", from, "to", to, "error", err)
		return err
	}
	s.logger.Info("transfer", "from", from, "to", to, "amount", amount)
	return nil
}

// Balance returns the current balance of the account.
func (s *BankService) Balance(number int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.bank.Account(number)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance(), nil
}

// History returns the transaction log of the account in insertion order.
func (s *BankService) History(number int64) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.bank.Account(number)
	if err != nil {
		return nil, err
	}
	return a.History(), nil
}

// AccountSummary is the read-only listing projection.
type AccountSummary struct {
	Number   int64           `json:"account_number"`
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
	Locked   bool            `json:"locked"`
}

// ListAccounts projects all accounts in registry insertion order.
func (s *BankService) ListAccounts() []AccountSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := s.bank.Accounts()
	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountSummary{
			Number:   a.Number(),
			Name:     a.Name(),
			Username: a.Username(),
			Balance:  a.Balance(),
			Locked:   a.Locked(),
		})
	}
	return out
}

// Account looks up an account by number.
func (s *BankService) Account(number int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bank.Account(number)
}

// Unlock clears an account's lockout state (admin operation) and persists.
func (s *BankService) Unlock(number int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bank.Unlock(number); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		return err
	}
	s.logger.Info("account unlocked", "number", number)
	return nil
}

// persist saves the whole bank state. Callers hold the mutex.
func (s *BankService) persist() error {
	if err := s.repo.Save(repository.FromBank(s.bank)); err != nil {
		s.logger.Error("snapshot save failed", "error", err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}
