package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

// ListTransactionsWithClient returns every transaction in dataset that came
// from a successful parsing run, oldest first. Rows from superseded or failed
// runs are excluded.
func ListTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset string) ([]*TransactionRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.transaction_date,
			t.amount,
			t.currency,
			t.direction,
			t.raw_description,
			t.normalized_description,
			t.category_name,
			t.is_pending,
			t.is_internal_transfer,
			t.tags,
			t.created_ts
		FROM %[1]s.%[2]s t
		INNER JOIN %[1]s.parsing_runs pr
		  ON t.parsing_run_id = pr.parsing_run_id
		WHERE pr.status = 'SUCCESS'
		ORDER BY t.transaction_date, t.created_ts
	`, dataset, transactionsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
