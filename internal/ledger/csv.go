package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// Columns a CSV ledger must carry. category and notes are optional.
var requiredColumns = []string{"date", "merchant", "amount", "type"}

// DecodeCSV reads a ledger with a header row naming its columns
// (date, merchant, category, amount, type, notes) in any order.
// Every row is validated; the first bad row fails the whole decode.
func DecodeCSV(r io.Reader) ([]domain.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("DecodeCSV: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("DecodeCSV: missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	txns := []domain.Transaction{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("DecodeCSV: line %d: %w", line, err)
		}

		tx, err := parseRecord(func(name string) string { return field(record, name) })
		if err != nil {
			return nil, fmt.Errorf("DecodeCSV: line %d: %w", line, err)
		}
		txns = append(txns, tx)
	}

	return txns, nil
}

func parseRecord(get func(string) string) (domain.Transaction, error) {
	date, err := civil.ParseDate(get("date"))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: date %q", domain.ErrInvalidTransaction, get("date"))
	}
	amount, err := strconv.ParseFloat(get("amount"), 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: amount %q", domain.ErrInvalidTransaction, get("amount"))
	}
	typ, err := domain.ParseTxType(get("type"))
	if err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		Date:     date,
		Merchant: get("merchant"),
		Category: get("category"),
		Amount:   amount,
		Type:     typ,
		Notes:    get("notes"),
	}
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// EncodeCSV writes txns with the header DecodeCSV expects.
func EncodeCSV(w io.Writer, txns []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "merchant", "category", "amount", "type", "notes"}); err != nil {
		return fmt.Errorf("EncodeCSV: write header: %w", err)
	}
	for _, t := range txns {
		record := []string{
			t.Date.String(),
			t.Merchant,
			t.Category,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			string(t.Type),
			t.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("EncodeCSV: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
