// Package initializer wires configuration, logging, storage and services
// into a ready-to-use dependency set for the CLI and server entrypoints.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/amiraly/banksim/infra/gormstore"
	"github.com/amiraly/banksim/infra/jsonstore"
	"github.com/amiraly/banksim/infra/memory"
	"github.com/amiraly/banksim/pkg/config"
	"github.com/amiraly/banksim/pkg/domain"
	"github.com/amiraly/banksim/pkg/repository"
	"github.com/amiraly/banksim/pkg/service"
)

// Deps holds the initialized application dependencies.
type Deps struct {
	Config *config.App
	Logger *slog.Logger
	Repo   repository.Repository
	Bank   *service.BankService
	Auth   *service.AuthService
}

// InitializeDependencies builds the logger, selects the snapshot backend,
// rehydrates the bank and constructs the services.
func InitializeDependencies(cfg *config.App) (*Deps, error) {
	logger := setupLogger(cfg.Log)

	repo, err := newRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	snap, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	bank, err := repository.RestoreBank(snap, domain.AdminCredentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("restore bank: %w", err)
	}
	logger.Info("bank restored", "backend", cfg.Storage.Backend, "accounts", len(snap.Accounts))

	bankSvc := service.NewBankService(bank, repo, logger)
	authSvc := service.NewAuthService(bankSvc, cfg.Jwt, logger)

	return &Deps{
		Config: cfg,
		Logger: logger,
		Repo:   repo,
		Bank:   bankSvc,
		Auth:   authSvc,
	}, nil
}

func newRepository(cfg *config.App, logger *slog.Logger) (repository.Repository, error) {
	switch cfg.Storage.Backend {
	case "json", "":
		return jsonstore.New(cfg.Storage.Path, logger), nil
	case "postgres":
		if cfg.Storage.DSN == "" {
			return nil, fmt.Errorf("postgres backend requires STORAGE_DSN")
		}
		return gormstore.New(cfg.Storage.DSN)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
