package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aditsw/smartsheet/internal/domain"
)

// FromScriptRows normalizes the JSON row objects an Apps Script endpoint
// returns. The script path trusts payload shape more than the CSV path
// does but is more forgiving about numbers: an amount that will not
// coerce becomes 0 instead of dropping the row. A missing date falls back
// to now; a present but unparseable one drops the row like the CSV path.
func FromScriptRows(rows []map[string]any, now time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		if strings.EqualFold(stringField(row, "status"), "deleted") {
			continue
		}

		date := isoDate(now)
		if raw := stringField(row, "date"); raw != "" {
			when, err := parseDate(raw)
			if err != nil {
				continue
			}
			date = isoDate(when)
		}

		id := stringField(row, "id")
		if id == "" {
			id = domain.GeneratedID()
		}

		desc := stringField(row, "description")
		if desc == "" {
			desc = domain.UnknownDescription
		}

		category := stringField(row, "category")
		if category == "" {
			category = domain.Uncategorized
		}

		typ := domain.Expense
		if strings.EqualFold(stringField(row, "type"), "income") {
			typ = domain.Income
		}

		out = append(out, domain.Transaction{
			ID:          id,
			Date:        date,
			Description: desc,
			Amount:      numberField(row, "amount"),
			Category:    category,
			Type:        typ,
		})
	}
	return out
}

// stringField renders a field as trimmed text; numbers count, nil and
// absent values do not.
func stringField(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// numberField coerces a field numerically with a zero fallback, returning
// the magnitude. NaN and Inf count as uncoercible.
func numberField(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return finiteAbs(v)
	case int:
		return math.Abs(float64(v))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return finiteAbs(f)
		}
		return 0
	default:
		return 0
	}
}

func finiteAbs(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Abs(v)
}
