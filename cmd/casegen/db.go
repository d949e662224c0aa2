package main

import (
	"context"
	"fmt"
	"strings"

	"casegen/internal/config"
	"casegen/internal/store"
	"casegen/internal/store/postgres"
	"casegen/internal/store/sqlite"
)

// openLedger returns nil when no ledger is configured.
func openLedger(ctx context.Context, cfg *config.ProjectConfig) (store.Ledger, error) {
	dsn := cfg.Ledger.DSN
	var (
		ledger store.Ledger
		err    error
	)
	switch {
	case dsn == "":
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		ledger, err = postgres.New(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		ledger, err = sqlite.New(ctx, sqliteDSN(cfg, dsn))
	default:
		return nil, fmt.Errorf("unsupported ledger dsn %q: expected sqlite:// or postgres://", dsn)
	}
	if err != nil {
		return nil, err
	}
	if err := ledger.EnsureSchema(ctx); err != nil {
		ledger.Close(ctx)
		return nil, err
	}
	return ledger, nil
}

// sqliteDSN resolves a relative database path against the config directory.
func sqliteDSN(cfg *config.ProjectConfig, dsn string) string {
	path, ok := strings.CutPrefix(dsn, "sqlite://")
	if !ok || path == "" || strings.HasPrefix(path, ":memory:") {
		return dsn
	}
	path, query, _ := strings.Cut(path, "?")
	resolved := "sqlite://" + cfg.Resolve(path)
	if query != "" {
		resolved += "?" + query
	}
	return resolved
}

func requireLedger(ctx context.Context, cfg *config.ProjectConfig) (store.Ledger, error) {
	ledger, err := openLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, fmt.Errorf("no ledger configured: set ledger.dsn or CASEGEN_LEDGER_DSN")
	}
	return ledger, nil
}
