package ledger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dvloznov/finance-coach/internal/domain"
)

func TestDecodeCSV(t *testing.T) {
	input := "\ufeffdate,merchant,category,amount,type,notes\n" +
		"2024-01-03,Netflix,Entertainment,15.49,debit,\n" +
		"2024-01-25, Employer Payroll ,Income,4000,CREDIT,january\n" +
		"2024-02-03,\"Corner Bakery, Main St\",Food,7.5,debit,\"anomaly, double charge\"\n"

	txns, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("got %d rows, want 3", len(txns))
	}

	if txns[0].Date.String() != "2024-01-03" || txns[0].Merchant != "Netflix" || txns[0].Amount != 15.49 || txns[0].Type != domain.Debit {
		t.Errorf("row 0 = %+v", txns[0])
	}
	if txns[1].Merchant != "Employer Payroll" || txns[1].Type != domain.Credit || txns[1].Notes != "january" {
		t.Errorf("row 1 = %+v", txns[1])
	}
	if txns[2].Merchant != "Corner Bakery, Main St" || txns[2].Notes != "anomaly, double charge" {
		t.Errorf("row 2 = %+v", txns[2])
	}
}

func TestDecodeCSV_ColumnOrderAndOptionalColumns(t *testing.T) {
	input := "type,amount,merchant,date\n" +
		"debit,9.99,Spotify,2024-05-01\n"

	txns, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(txns) != 1 || txns[0].Merchant != "Spotify" || txns[0].Category != "" || txns[0].Amount != 9.99 {
		t.Errorf("txns = %+v", txns)
	}
}

func TestDecodeCSV_TrimsFields(t *testing.T) {
	input := "date,merchant,category,amount,type\n" +
		"2024-05-01, Spotify ,  Software ,9.99,debit\n"

	txns, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(txns) != 1 || txns[0].Merchant != "Spotify" || txns[0].Category != "Software" {
		t.Errorf("txns = %+v", txns)
	}
}

func TestDecodeCSV_Errors(t *testing.T) {
	header := "date,merchant,category,amount,type,notes\n"

	tests := []struct {
		name     string
		input    string
		wantLine string
		invalid  bool
	}{
		{name: "missing column", input: "date,merchant,amount\n"},
		{name: "bad date", input: header + "2024-13-01,A,x,1,debit,\n", wantLine: "line 2", invalid: true},
		{name: "bad amount", input: header + "2024-01-01,A,x,ten,debit,\n", wantLine: "line 2", invalid: true},
		{name: "negative amount", input: header + "2024-01-01,A,x,1,debit,\n2024-01-02,B,x,-5,debit,\n", wantLine: "line 3", invalid: true},
		{name: "unknown type", input: header + "2024-01-01,A,x,1,refund,\n", wantLine: "line 2", invalid: true},
		{name: "blank merchant", input: header + "2024-01-01, ,x,1,debit,\n", wantLine: "line 2", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("DecodeCSV() error = nil")
			}
			if tt.wantLine != "" && !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("error %q does not name %s", err, tt.wantLine)
			}
			if tt.invalid && !errors.Is(err, domain.ErrInvalidTransaction) {
				t.Errorf("error %v is not ErrInvalidTransaction", err)
			}
		})
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	txns, err := DecodeCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if txns == nil || len(txns) != 0 {
		t.Errorf("txns = %v, want empty non-nil slice", txns)
	}
}

func TestEncodeCSV_RoundTrip(t *testing.T) {
	rows := []domain.Transaction{
		tx(t, "2024-01-01", "Corner Bakery, Main St", 7.5),
		tx(t, "2024-01-02", "Netflix", 15.49),
	}
	rows[1].Notes = "price went up"

	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		t.Fatalf("EncodeCSV() error = %v", err)
	}
	got, err := DecodeCSV(&buf)
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}
