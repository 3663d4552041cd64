// Package reconcile merges freshly ingested transactions with the
// enrichment collaborator's categorization results.
package reconcile

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aditsw/smartsheet/internal/domain"
)

// Request is one uncategorized record sent to the categorizer. Token is a
// correlation key (the transaction id) echoed back in the result, so a
// collaborator that reorders or drops entries cannot mis-map them.
type Request struct {
	Token       string
	Description string
	Amount      float64
}

// Result is the categorizer's verdict for one token.
type Result struct {
	Token    string
	Category string
	Type     domain.TransactionType
}

// Categorizer assigns categories to transactions that arrived without one.
type Categorizer interface {
	Categorize(ctx context.Context, reqs []Request) ([]Result, error)
}

// NeedsCategory reports whether a transaction should be sent for
// enrichment: no category yet, or only a placeholder.
func NeedsCategory(t domain.Transaction) bool {
	c := strings.TrimSpace(t.Category)
	return c == "" || c == domain.Uncategorized || c == domain.CategoryOther
}

// Merge partitions the batch into already-categorized and
// needs-enrichment subsets, asks the categorizer about the latter, and
// returns the union sorted by date descending. Enrichment is best effort:
// a failed or partial response leaves the affected records with the
// default Other/EXPENSE instead of dropping them, so the output always
// has exactly as many records as the input.
func Merge(ctx context.Context, cat Categorizer, txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	var pending []domain.Transaction

	for _, t := range txs {
		if NeedsCategory(t) {
			pending = append(pending, t)
		} else {
			out = append(out, t)
		}
	}

	if len(pending) > 0 {
		reqs := make([]Request, len(pending))
		for i, t := range pending {
			if t.ID == "" {
				t.ID = domain.GeneratedID()
				pending[i] = t
			}
			reqs[i] = Request{Token: t.ID, Description: t.Description, Amount: t.Amount}
		}

		byToken := map[string]Result{}
		if cat != nil {
			if results, err := cat.Categorize(ctx, reqs); err == nil {
				for _, r := range results {
					byToken[r.Token] = r
				}
			}
		}

		for _, t := range pending {
			out = append(out, applyResult(t, byToken[t.ID]))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// applyResult folds one enrichment verdict into a pending transaction,
// filling the same defaults the normalizer uses for anything still blank.
func applyResult(t domain.Transaction, r Result) domain.Transaction {
	t.Category = r.Category
	if t.Category == "" {
		t.Category = domain.CategoryOther
	}
	t.Type = domain.ParseType(string(r.Type))

	if t.Date == "" {
		t.Date = time.Now().Format("2006-01-02")
	}
	if t.Description == "" {
		t.Description = domain.UnknownDescription
	}
	return t
}
