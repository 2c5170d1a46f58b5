package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"

	"stayledger/internal/config"
	"stayledger/internal/db"
	"stayledger/internal/logger"
	"stayledger/internal/repository"
	"stayledger/internal/service"
)

func main() {
	file := flag.String("file", "", "JSON file with accounts to seed; the built-in dummy ledgers when empty")
	flag.Parse()

	cfg := config.Load()

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		l.Fatal("Failed to connect to database.", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		l.Fatal("Failed to run migrations.", zap.Error(err))
	}

	accounts, err := loadAccounts(*file)
	if err != nil {
		l.Fatal("Failed to load seed accounts.", zap.String("file", *file), zap.Error(err))
	}

	ledgerRepo := repository.NewLedgerRepository(gormDB)
	ledgerService := service.NewLedgerService(ledgerRepo, repository.NewTxManager(gormDB), nil, l)

	created, err := ledgerService.Seed(context.Background(), accounts)
	if err != nil {
		l.Fatal("Failed to seed ledgers.", zap.Error(err))
	}
	l.Info("Seed completed.", zap.Int("created", created), zap.Int("skipped", len(accounts)-created))
}

func loadAccounts(path string) ([]service.SeedAccount, error) {
	if path == "" {
		return service.DefaultSeedAccounts()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var accounts []service.SeedAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}
