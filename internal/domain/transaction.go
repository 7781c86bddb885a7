package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/civil"
)

// ErrInvalidTransaction is returned by loaders when a ledger row cannot be
// handed to the scoring engine.
var ErrInvalidTransaction = errors.New("invalid transaction")

// TxType is the direction of a ledger entry.
type TxType string

const (
	// Debit is money leaving the account. Only debits are scored.
	Debit TxType = "debit"
	// Credit is money entering the account.
	Credit TxType = "credit"
)

// ParseTxType parses "debit"/"credit" case-insensitively.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Debit:
		return Debit, nil
	case Credit:
		return Credit, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
}

// Transaction is one already-parsed ledger entry. Values are treated as
// immutable once they enter the ledger store.
type Transaction struct {
	Date     civil.Date `json:"date"`     // calendar date, no time of day
	Merchant string     `json:"merchant"` // free-text payee as printed on the statement
	Category string     `json:"category"`
	Amount   float64    `json:"amount"` // always non-negative, direction lives in Type
	Type     TxType     `json:"type"`
	Notes    string     `json:"notes,omitempty"`
}

// IsDebit reports whether the transaction participates in scoring.
func (t Transaction) IsDebit() bool {
	return t.Type == Debit
}

// Month returns the calendar month key in YYYY-MM form. Keys sort
// chronologically as plain strings.
func (t Transaction) Month() string {
	return fmt.Sprintf("%04d-%02d", t.Date.Year, int(t.Date.Month))
}

// Validate rejects rows the engine must never see: negative or non-finite
// amounts, invalid dates, unknown types and empty merchants.
func (t Transaction) Validate() error {
	if !t.Date.IsValid() {
		return fmt.Errorf("%w: invalid date %q", ErrInvalidTransaction, t.Date.String())
	}
	if strings.TrimSpace(t.Merchant) == "" {
		return fmt.Errorf("%w: empty merchant", ErrInvalidTransaction)
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return fmt.Errorf("%w: non-finite amount for %q", ErrInvalidTransaction, t.Merchant)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: negative amount %.2f for %q", ErrInvalidTransaction, t.Amount, t.Merchant)
	}
	if t.Type != Debit && t.Type != Credit {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	return nil
}

// ValidateLedger validates every row and reports the first failure with its
// position.
func ValidateLedger(txns []Transaction) error {
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}
