package domain

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// ParseType maps a raw type string onto the closed enumeration, defaulting
// to Expense for anything unrecognized.
func ParseType(raw string) TransactionType {
	if TransactionType(raw) == Income {
		return Income
	}
	return Expense
}

// Transaction is one normalized ledger entry. Amount is always a
// non-negative magnitude; the sign lives in Type. Date is always a
// YYYY-MM-DD string derived from a successfully parsed timestamp.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`

	// Image holds a base64-encoded receipt scan. Only manual capture
	// flows set it; bulk ingestion never does.
	Image string `json:"image,omitempty"`
}

// CategoryEntry is one slice of the expense breakdown.
type CategoryEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// TrendPoint is one time bucket of the income/expense trend series.
type TrendPoint struct {
	Bucket  string  `json:"bucket"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// SpendingSummary is derived from the filtered working set and recomputed
// on every relevant change. It is never persisted.
type SpendingSummary struct {
	TotalIncome       float64         `json:"totalIncome"`
	TotalExpense      float64         `json:"totalExpense"`
	Balance           float64         `json:"balance"`
	CategoryBreakdown []CategoryEntry `json:"categoryBreakdown"`
	MonthlyTrend      []TrendPoint    `json:"monthlyTrend"`
}
