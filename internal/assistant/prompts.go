package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/reconcile"
)

const insightSystemInstruction = "You are a savvy financial analyst. Analyze the provided transaction JSON data. " +
	"Your goal is to provide helpful, actionable, and sometimes witty insights about the user's spending habits. " +
	"Keep responses concise and formatted with Markdown."

const receiptPrompt = "You are a receipt scanner. Extract the single overall total from the attached receipt image.\n" +
	"Return STRICT JSON with these fields:\n" +
	"- \"amount\": number, the grand total paid\n" +
	"- \"date\": string, ISO format \"YYYY-MM-DD\", or empty string if not visible\n" +
	"- \"description\": string, the merchant name\n" +
	"- \"category\": string, the most fitting spending category\n" +
	"Aggregate line items into one record. Do not invent values that are not on the receipt."

// buildCategorizePrompt lists the category vocabulary and the pending
// records, each tagged with its correlation token.
func buildCategorizePrompt(reqs []reconcile.Request) string {
	var b strings.Builder
	b.WriteString("You are a financial assistant. I have a list of transactions.\n")
	b.WriteString("Assign the most appropriate category to each transaction from this list: ")
	b.WriteString(strings.Join(domain.Categories, ", "))
	b.WriteString(".\n")
	b.WriteString("If it looks like income (e.g., Salary, Deposit), mark type as INCOME, otherwise EXPENSE.\n")
	b.WriteString("Echo each transaction's token back unchanged so the answers can be matched up.\n\n")
	b.WriteString("Transactions:\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "[%s] %s ($%g)\n", r.Token, r.Description, r.Amount)
	}
	return b.String()
}

// buildInsightPrompt serializes the transactions compactly and appends
// either the user's question or the default analysis request.
func buildInsightPrompt(txs []domain.Transaction, userQuery string) (string, error) {
	type row struct {
		Date   string  `json:"date"`
		Desc   string  `json:"desc"`
		Amount float64 `json:"amount"`
		Cat    string  `json:"cat"`
		Type   string  `json:"type"`
	}
	rows := make([]row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, row{
			Date:   t.Date,
			Desc:   t.Description,
			Amount: t.Amount,
			Cat:    t.Category,
			Type:   string(t.Type),
		})
	}
	context, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("buildInsightPrompt: marshal context: %w", err)
	}

	if userQuery != "" {
		return fmt.Sprintf("Here is my transaction data: %s.\n\nUser Question: %s", context, userQuery), nil
	}
	return fmt.Sprintf("Here is my transaction data: %s.\n\n"+
		"Please provide a brief spending analysis. Point out the biggest expenses, "+
		"suggest where I can save, and give an overall financial health score (0-100).", context), nil
}
