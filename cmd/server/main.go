package main

import (
	"log/slog"
	"os"

	"github.com/amiraly/banksim/infra/initializer"
	"github.com/amiraly/banksim/pkg/config"
	"github.com/amiraly/banksim/webapi"
)

func main() {
	cfg, err := config.Load(slog.Default())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		slog.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	app := webapi.New(deps)
	deps.Logger.Info("listening", "addr", cfg.Server.Addr)
	if err := app.Listen(cfg.Server.Addr); err != nil {
		deps.Logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
