package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/aditsw/smartsheet/internal/domain"
)

// fakeCategorizer returns canned results, optionally failing, and records
// what it was asked.
type fakeCategorizer struct {
	results []Result
	err     error
	got     []Request
}

func (f *fakeCategorizer) Categorize(ctx context.Context, reqs []Request) ([]Result, error) {
	f.got = reqs
	return f.results, f.err
}

func TestNeedsCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{name: "empty", category: "", want: true},
		{name: "whitespace", category: "  ", want: true},
		{name: "placeholder", category: domain.Uncategorized, want: true},
		{name: "other", category: domain.CategoryOther, want: true},
		{name: "real category", category: "Food & Dining", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeedsCategory(domain.Transaction{Category: tt.category})
			if got != tt.want {
				t.Errorf("NeedsCategory(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestMerge_AppliesResultsByToken(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5, Category: domain.Uncategorized},
		{ID: "b", Date: "2024-05-02", Description: "Salary", Amount: 3000, Category: domain.Uncategorized},
		{ID: "c", Date: "2024-05-03", Description: "Rent", Amount: 1200, Category: "Housing", Type: domain.Expense},
	}

	// Results arrive in the reverse order of the requests; tokens keep
	// the mapping straight.
	cat := &fakeCategorizer{results: []Result{
		{Token: "b", Category: "Income", Type: domain.Income},
		{Token: "a", Category: "Food & Dining", Type: domain.Expense},
	}}

	got := Merge(context.Background(), cat, txs)

	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got))
	}
	if len(cat.got) != 2 {
		t.Fatalf("expected 2 enrichment requests, got %d", len(cat.got))
	}

	byID := map[string]domain.Transaction{}
	for _, tr := range got {
		byID[tr.ID] = tr
	}
	if byID["a"].Category != "Food & Dining" || byID["a"].Type != domain.Expense {
		t.Errorf("transaction a mis-applied: %+v", byID["a"])
	}
	if byID["b"].Category != "Income" || byID["b"].Type != domain.Income {
		t.Errorf("transaction b mis-applied: %+v", byID["b"])
	}
	if byID["c"].Category != "Housing" {
		t.Errorf("already-categorized transaction must not change: %+v", byID["c"])
	}
}

func TestMerge_FailureFallsBackToDefaults(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5, Category: domain.Uncategorized},
		{ID: "b", Date: "2024-05-02", Description: "Rent", Amount: 1200, Category: "Housing", Type: domain.Expense},
	}
	cat := &fakeCategorizer{err: errors.New("model unavailable")}

	got := Merge(context.Background(), cat, txs)

	if len(got) != 2 {
		t.Fatalf("failure must not drop records: got %d, want 2", len(got))
	}
	for _, tr := range got {
		switch tr.ID {
		case "a":
			if tr.Category != domain.CategoryOther || tr.Type != domain.Expense {
				t.Errorf("expected Other/EXPENSE defaults, got %+v", tr)
			}
		case "b":
			if tr.Category != "Housing" {
				t.Errorf("categorized record must be untouched, got %+v", tr)
			}
		}
	}
}

func TestMerge_PartialResponse(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5},
		{ID: "b", Date: "2024-05-02", Description: "Bus", Amount: 2},
	}
	// Only one of two tokens answered.
	cat := &fakeCategorizer{results: []Result{
		{Token: "b", Category: "Transportation", Type: domain.Expense},
	}}

	got := Merge(context.Background(), cat, txs)

	byID := map[string]domain.Transaction{}
	for _, tr := range got {
		byID[tr.ID] = tr
	}
	if byID["a"].Category != domain.CategoryOther {
		t.Errorf("unanswered token should default to Other, got %q", byID["a"].Category)
	}
	if byID["b"].Category != "Transportation" {
		t.Errorf("answered token should apply, got %q", byID["b"].Category)
	}
}

func TestMerge_NilCategorizer(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "a", Date: "2024-05-01", Description: "Coffee", Amount: 4.5},
	}

	got := Merge(context.Background(), nil, txs)

	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	if got[0].Category != domain.CategoryOther || got[0].Type != domain.Expense {
		t.Errorf("expected defaults without a categorizer, got %+v", got[0])
	}
}

func TestMerge_SortsByDateDescending(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "old", Date: "2024-01-01", Description: "Old", Amount: 1, Category: "Other"},
		{ID: "new", Date: "2024-06-01", Description: "New", Amount: 1, Category: "Housing"},
		{ID: "mid", Date: "2024-03-01", Description: "Mid", Amount: 1, Category: "Housing"},
	}

	got := Merge(context.Background(), &fakeCategorizer{}, txs)

	wantOrder := []string{"new", "mid", "old"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("order mismatch at %d: got %s, want %s (%+v)", i, got[i].ID, id, got)
		}
	}
}

func TestMerge_AssignsMissingIDs(t *testing.T) {
	txs := []domain.Transaction{
		{Date: "2024-05-01", Description: "Coffee", Amount: 4.5},
	}

	got := Merge(context.Background(), &fakeCategorizer{}, txs)

	if got[0].ID == "" {
		t.Error("expected an id to be assigned before enrichment")
	}
}
