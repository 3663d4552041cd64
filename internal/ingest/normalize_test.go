package ingest

import (
	"strings"
	"testing"

	"github.com/aditsw/smartsheet/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "plain", in: "1000", want: 1000},
		{name: "decimal", in: "12.50", want: 12.5},
		{name: "dollar sign", in: "$12.50", want: 12.5},
		{name: "rupiah with grouping", in: "Rp1,000", want: 1000},
		{name: "parenthesized negative", in: "(Rp1,000)", want: 1000},
		{name: "parenthesized dollars", in: "($45.00)", want: 45},
		{name: "explicit negative", in: "-250", want: 250},
		{name: "pound", in: "£99.99", want: 99.99},
		{name: "euro with grouping", in: "€1,234.56", want: 1234.56},
		{name: "surrounding space", in: " 42 ", want: 42},
		{name: "garbage", in: "n/a", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "nan", in: "NaN", wantErr: true},
		{name: "inf", in: "Inf", wantErr: true},
		{name: "negative inf", in: "-Inf", wantErr: true},
		{name: "infinity", in: "Infinity", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAmount(%q): expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAmount(%q): unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "iso", in: "2024-05-01", want: "2024-05-01"},
		{name: "iso datetime", in: "2024-05-01T10:30:00", want: "2024-05-01"},
		{name: "slash month first", in: "5/1/2024", want: "2024-05-01"},
		{name: "slash zero padded", in: "05/01/2024", want: "2024-05-01"},
		{name: "month name", in: "May 1, 2024", want: "2024-05-01"},
		{name: "day first long", in: "1 May 2024", want: "2024-05-01"},
		{name: "nonsense", in: "yesterday", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDate(%q): expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDate(%q): unexpected error: %v", tt.in, err)
			}
			if iso := isoDate(got); iso != tt.want {
				t.Errorf("parseDate(%q) = %s, want %s", tt.in, iso, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Description,Amount,Category,Type,Status",
		"2024-05-01,Coffee,$4.50,Food & Dining,EXPENSE,Active",
		`2024-05-02,Salary,"(Rp1,000)",Income,INCOME,`,
		"2024-05-03,Ghost entry,10.00,,EXPENSE,Deleted",
		"not-a-date,Broken,5.00,,EXPENSE,",
		"2024-05-04,No amount,,,EXPENSE,",
	}, "\n")

	got := ParseCSV(csv)

	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d: %+v", len(got), got)
	}

	coffee := got[0]
	if coffee.Description != "Coffee" || coffee.Amount != 4.5 || coffee.Type != domain.Expense {
		t.Errorf("unexpected first transaction: %+v", coffee)
	}
	if coffee.Category != "Food & Dining" {
		t.Errorf("expected category kept from source, got %q", coffee.Category)
	}
	if !strings.HasPrefix(coffee.ID, "sheet-") {
		t.Errorf("expected generated sheet id, got %q", coffee.ID)
	}

	salary := got[1]
	if salary.Amount != 1000 {
		t.Errorf("parenthesized amount: got %v, want 1000", salary.Amount)
	}
	if salary.Type != domain.Income {
		t.Errorf("expected INCOME, got %s", salary.Type)
	}

	// The empty-amount row survives as zero; the soft-deleted and
	// bad-date rows do not survive at all.
	noAmount := got[2]
	if noAmount.Amount != 0 {
		t.Errorf("empty amount should coerce to 0, got %v", noAmount.Amount)
	}
	for _, tr := range got {
		if tr.Description == "Ghost entry" {
			t.Error("soft-deleted row leaked into the result")
		}
		if tr.Description == "Broken" {
			t.Error("row with unparseable date leaked into the result")
		}
	}
}

func TestParseCSV_HeaderlessGrid(t *testing.T) {
	csv := strings.Join([]string{
		"2024-05-01,First row is treated as header,4.50",
		"2024-05-02,Groceries,82.10",
	}, "\n")

	got := ParseCSV(csv)

	// Row 0 is consumed as the assumed header even without one.
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	tr := got[0]
	if tr.Date != "2024-05-02" || tr.Description != "Groceries" || tr.Amount != 82.10 {
		t.Errorf("unexpected transaction: %+v", tr)
	}
	if tr.Category != domain.Uncategorized {
		t.Errorf("expected %q placeholder, got %q", domain.Uncategorized, tr.Category)
	}
}

func TestParseCSV_DescriptionFallbacks(t *testing.T) {
	// Header maps date and amount only; description falls back to the
	// first column that is neither.
	csv := strings.Join([]string{
		"Date,Notes,Amount",
		"2024-05-01,,10.00",
	}, "\n")

	got := ParseCSV(csv)
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	if got[0].Description != "Unspecified" {
		t.Errorf("expected empty cell sentinel, got %q", got[0].Description)
	}
}

func TestParseCSV_NonFiniteAmountsDropped(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Description,Amount",
		"2024-05-01,Broken cell,NaN",
		"2024-05-02,Broken cell 2,Inf",
		"2024-05-03,Fine,10.00",
	}, "\n")

	got := ParseCSV(csv)

	if len(got) != 1 {
		t.Fatalf("expected only the finite row to survive, got %+v", got)
	}
	if got[0].Description != "Fine" || got[0].Amount != 10 {
		t.Errorf("unexpected surviving row: %+v", got[0])
	}
}

func TestParseCSV_Empty(t *testing.T) {
	for _, in := range []string{"", "\n\n", "   \n  "} {
		if got := ParseCSV(in); len(got) != 0 {
			t.Errorf("ParseCSV(%q) = %+v, want empty", in, got)
		}
	}
}

func TestParseCSV_Idempotent(t *testing.T) {
	csv := strings.Join([]string{
		"ID,Date,Description,Amount,Category,Type",
		"tx-1,2024-05-01,Coffee,4.5,Food & Dining,EXPENSE",
	}, "\n")

	first := ParseCSV(csv)
	if len(first) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(first))
	}

	tr := first[0]
	again := strings.Join([]string{
		"ID,Date,Description,Amount,Category,Type",
		strings.Join([]string{tr.ID, tr.Date, tr.Description, "4.5", tr.Category, string(tr.Type)}, ","),
	}, "\n")

	second := ParseCSV(again)
	if len(second) != 1 {
		t.Fatalf("expected 1 transaction on re-parse, got %d", len(second))
	}
	if second[0] != tr {
		t.Errorf("normalization is not idempotent:\n got %+v\nwant %+v", second[0], tr)
	}
}
