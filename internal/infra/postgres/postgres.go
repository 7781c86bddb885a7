// Package postgres loads the ledger from a Postgres transactions table
// populated by a bank sync.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listTransactionsQuery = `
	SELECT t.date, t.name, t.merchant_name, t.category, t.amount::text, t.notes
	FROM transactions t
	ORDER BY t.date, t.id
`

// Connect opens a pool for url and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("Connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("Connect: ping: %w", err)
	}

	return pool, nil
}

// Row is one transactions row. Amounts follow the bank-sync convention:
// positive is money leaving the account.
type Row struct {
	Date         time.Time
	Name         string
	MerchantName *string
	Category     *string
	Amount       string
	Notes        *string
}

// Source loads the ledger through a pgx pool.
type Source struct {
	pool *pgxpool.Pool
}

// NewSource creates a source over an open pool.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

// Name implements ledger.Source.
func (s *Source) Name() string {
	return "postgres"
}

// Close releases the pool.
func (s *Source) Close() {
	s.pool.Close()
}

// Load implements ledger.Source.
func (s *Source) Load(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, listTransactionsQuery)
	if err != nil {
		return nil, fmt.Errorf("Source.Load: query: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Date, &r.Name, &r.MerchantName, &r.Category, &r.Amount, &r.Notes); err != nil {
			return nil, fmt.Errorf("Source.Load: scan: %w", err)
		}
		tx, err := r.Transaction()
		if err != nil {
			return nil, fmt.Errorf("Source.Load: row %d: %w", len(txns)+1, err)
		}
		txns = append(txns, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Source.Load: rows: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug().Int("rows", len(txns)).Msg("Loaded transactions from Postgres")
	return txns, nil
}

// Transaction maps the row onto a ledger transaction.
func (r Row) Transaction() (domain.Transaction, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(r.Amount), 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: amount %q", domain.ErrInvalidTransaction, r.Amount)
	}

	tx := domain.Transaction{
		Date:     civil.DateOf(r.Date),
		Merchant: strings.TrimSpace(r.Name),
		Category: "Uncategorized",
		Amount:   amount,
		Type:     domain.Debit,
	}
	if amount < 0 {
		tx.Amount = -amount
		tx.Type = domain.Credit
	}
	if r.MerchantName != nil && strings.TrimSpace(*r.MerchantName) != "" {
		tx.Merchant = strings.TrimSpace(*r.MerchantName)
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) != "" {
		tx.Category = strings.TrimSpace(*r.Category)
	}
	if r.Notes != nil {
		tx.Notes = *r.Notes
	}

	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

var _ ledger.Source = (*Source)(nil)
