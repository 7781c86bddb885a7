package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/dvloznov/finance-coach/internal/logger"
)

const uncategorized = "Uncategorized"

var datasetPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Source loads the ledger from the finance.transactions table.
type Source struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewSource creates a BigQuery client for project and a source reading from
// dataset.
func NewSource(ctx context.Context, project, dataset string) (*Source, error) {
	if !datasetPattern.MatchString(dataset) {
		return nil, fmt.Errorf("NewSource: invalid dataset name %q", dataset)
	}

	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewSource: creating client: %w", err)
	}
	return &Source{client: client, project: project, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (s *Source) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Name implements ledger.Source.
func (s *Source) Name() string {
	return fmt.Sprintf("bigquery:%s.%s", s.project, s.dataset)
}

// Load implements ledger.Source.
func (s *Source) Load(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := ListTransactionsWithClient(ctx, s.client, s.dataset)
	if err != nil {
		return nil, fmt.Errorf("Source.Load: %w", err)
	}

	txns, skipped, err := ToTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("Source.Load: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Int("rows", len(rows)).
		Int("skipped", skipped).
		Msg("Loaded transactions from BigQuery")

	return txns, nil
}

// ToTransactions maps table rows to ledger transactions. Pending rows and
// internal transfers are skipped and counted.
func ToTransactions(rows []*TransactionRow) ([]domain.Transaction, int, error) {
	txns := make([]domain.Transaction, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		if r.IsPending.Valid && r.IsPending.Bool {
			skipped++
			continue
		}
		if r.IsInternalTransfer.Valid && r.IsInternalTransfer.Bool {
			skipped++
			continue
		}

		tx, err := rowToTransaction(r)
		if err != nil {
			return nil, skipped, fmt.Errorf("transaction %s: %w", r.TransactionID, err)
		}
		txns = append(txns, tx)
	}
	return txns, skipped, nil
}

// rowToTransaction converts a signed amount into an unsigned amount plus
// direction. An explicit direction column wins over the sign.
func rowToTransaction(r *TransactionRow) (domain.Transaction, error) {
	if r.Amount == nil {
		return domain.Transaction{}, fmt.Errorf("%w: missing amount", domain.ErrInvalidTransaction)
	}

	amount, _ := new(big.Rat).Abs(r.Amount).Float64()
	typ := domain.Credit
	if r.Amount.Sign() < 0 {
		typ = domain.Debit
	}
	if r.Direction.Valid {
		switch strings.ToUpper(strings.TrimSpace(r.Direction.StringVal)) {
		case "DEBIT", "OUT", "OUTFLOW":
			typ = domain.Debit
		case "CREDIT", "IN", "INFLOW":
			typ = domain.Credit
		}
	}

	merchant := strings.TrimSpace(r.RawDescription)
	if r.NormalizedDescription.Valid && strings.TrimSpace(r.NormalizedDescription.StringVal) != "" {
		merchant = strings.TrimSpace(r.NormalizedDescription.StringVal)
	}

	category := uncategorized
	if r.CategoryName.Valid && strings.TrimSpace(r.CategoryName.StringVal) != "" {
		category = strings.TrimSpace(r.CategoryName.StringVal)
	}

	tx := domain.Transaction{
		Date:     r.TransactionDate,
		Merchant: merchant,
		Category: category,
		Amount:   amount,
		Type:     typ,
		Notes:    strings.Join(r.Tags, " "),
	}
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

var _ ledger.Source = (*Source)(nil)
