package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// TransactionRow is the subset of finance.transactions the ledger needs.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED in schema

	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC, negative for outflows
	Currency string   `bigquery:"currency"` // REQUIRED STRING

	Direction bigquery.NullString `bigquery:"direction"` // NULLABLE

	RawDescription        string              `bigquery:"raw_description"`        // REQUIRED STRING
	NormalizedDescription bigquery.NullString `bigquery:"normalized_description"` // NULLABLE STRING

	CategoryName bigquery.NullString `bigquery:"category_name"` // NULLABLE

	IsPending          bigquery.NullBool `bigquery:"is_pending"`
	IsInternalTransfer bigquery.NullBool `bigquery:"is_internal_transfer"`

	Tags []string `bigquery:"tags"` // REPEATED STRING

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}
