package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aditsw/smartsheet/internal/domain"
)

// currencyCleaner strips the currency markers and digit-group separators
// seen in sheet exports before numeric parsing.
var currencyCleaner = strings.NewReplacer("Rp", "", "$", "", "£", "", "€", "", ",", "")

// parseAmount turns an exported amount cell into a non-negative magnitude.
// A value wrapped in parentheses is negative by accounting convention; the
// sign is then discarded because Transaction carries it in Type.
func parseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(currencyCleaner.Replace(raw))
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parseAmount: invalid amount %q: %w", raw, err)
	}
	// ParseFloat accepts NaN and Inf spellings; a non-finite amount would
	// poison every downstream total.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parseAmount: non-finite amount %q", raw)
	}
	return math.Abs(v), nil
}

// dateLayouts are tried in order; the first that parses wins. Slash
// formats follow the US month-first convention the original sheets use.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parseDate: unrecognized date %q", raw)
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseCSV converts a published-CSV export into canonical transactions.
// Rows whose amount or date cannot be parsed are dropped silently, and
// rows soft-deleted at the source never surface. A payload with no usable
// lines yields an empty set, not an error.
func ParseCSV(text string) []domain.Transaction {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	headerRow, cols := detectColumns(lines)

	var out []domain.Transaction
	for i := headerRow + 1; i < len(lines); i++ {
		row := splitLine(lines[i])
		if len(row) < 2 {
			continue
		}
		if t, ok := normalizeRow(row, i, cols); ok {
			out = append(out, t)
		}
	}
	return out
}

// cell returns row[idx] when the index is present and in range.
func cell(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// normalizeRow builds zero or one transaction from a field-split row.
func normalizeRow(row []string, line int, cols columnMap) (domain.Transaction, bool) {
	if strings.EqualFold(cell(row, cols.Status), "deleted") {
		return domain.Transaction{}, false
	}

	rawAmount := cell(row, cols.Amount)
	if rawAmount == "" {
		rawAmount = "0"
	}
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return domain.Transaction{}, false
	}

	when, err := parseDate(cell(row, cols.Date))
	if err != nil {
		return domain.Transaction{}, false
	}

	// If no description column was identified, the first column that is
	// neither date nor amount stands in for it.
	descIdx := cols.Description
	if descIdx < 0 || descIdx >= len(row) {
		descIdx = -1
		for j := range row {
			if j != cols.Date && j != cols.Amount {
				descIdx = j
				break
			}
		}
	}
	desc := "Unspecified Transaction"
	if descIdx >= 0 {
		if desc = row[descIdx]; desc == "" {
			desc = "Unspecified"
		}
	}

	id := cell(row, cols.ID)
	if id == "" {
		id = domain.SheetRowID(line)
	}

	typ := domain.Expense
	if rawType := cell(row, cols.Type); rawType != "" {
		typ = classifyType(rawType)
	}

	category := cell(row, cols.Category)
	if category == "" {
		category = domain.Uncategorized
	}

	return domain.Transaction{
		ID:          id,
		Date:        isoDate(when),
		Description: desc,
		Amount:      amount,
		Category:    category,
		Type:        typ,
	}, true
}

// classifyType treats anything carrying an income token, English or
// Indonesian, as income; everything else is an expense.
func classifyType(raw string) domain.TransactionType {
	s := strings.ToLower(raw)
	if strings.Contains(s, "income") || strings.Contains(s, "pemasukan") {
		return domain.Income
	}
	return domain.Expense
}
