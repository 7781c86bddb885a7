// Package infra opens the ledger source selected in configuration.
package infra

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-coach/internal/config"
	infraBQ "github.com/dvloznov/finance-coach/internal/infra/bigquery"
	"github.com/dvloznov/finance-coach/internal/infra/gcs"
	"github.com/dvloznov/finance-coach/internal/infra/postgres"
	"github.com/dvloznov/finance-coach/internal/ledger"
)

// OpenSource connects the configured ledger source. The returned close
// function releases its clients and is never nil.
func OpenSource(ctx context.Context, cfg config.Config) (ledger.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.LedgerSource {
	case config.SourceFile:
		return ledger.NewFileSource(cfg.LedgerPath), noop, nil

	case config.SourceGCS:
		src, err := gcs.NewSource(ctx, cfg.LedgerGCSURI)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenSource: %w", err)
		}
		return src, src.Close, nil

	case config.SourceBigQuery:
		src, err := infraBQ.NewSource(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenSource: %w", err)
		}
		return src, src.Close, nil

	case config.SourcePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenSource: %w", err)
		}
		src := postgres.NewSource(pool)
		return src, func() error { src.Close(); return nil }, nil

	default:
		return nil, noop, fmt.Errorf("OpenSource: %q: %w", cfg.LedgerSource, ledger.ErrUnknownSource)
	}
}
