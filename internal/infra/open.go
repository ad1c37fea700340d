// Package infra selects and opens the configured ledger backend.
package infra

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-ledger/internal/config"
	infraBQ "github.com/dvloznov/statement-ledger/internal/infra/bigquery"
	"github.com/dvloznov/statement-ledger/internal/infra/sqlite"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/ledger/memory"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

// OpenStore opens the backend named by store.backend.
func OpenStore(ctx context.Context, cfg *config.Config) (ledger.Store, error) {
	log := logger.FromContext(ctx)

	switch cfg.Store.Backend {
	case "sqlite", "":
		s, err := sqlite.Open(cfg.Store.SQLitePath, cfg.Log.Level == "debug")
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		log.Debug().Str("path", cfg.Store.SQLitePath).Msg("opened sqlite ledger")
		return s, nil
	case "bigquery":
		repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		log.Debug().Str("project", cfg.BigQuery.Project).Str("dataset", cfg.BigQuery.Dataset).Msg("opened bigquery ledger")
		return repo, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("OpenStore: unknown backend %q", cfg.Store.Backend)
	}
}
