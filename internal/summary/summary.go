// Package summary derives the dashboard's aggregate views from the
// filtered working set.
package summary

import (
	"sort"
	"time"

	"github.com/aditsw/smartsheet/internal/domain"
)

// Mode selects the active time filter.
type Mode string

const (
	ModeAll   Mode = "all"
	ModeYear  Mode = "year"
	ModeMonth Mode = "month"
	ModeDay   Mode = "day"
)

// Filter is the dashboard's time selection. Year and Month apply to the
// year/month modes; Day is an exact YYYY-MM-DD match.
type Filter struct {
	Mode  Mode
	Year  int
	Month time.Month
	Day   string
}

// Match reports whether a transaction falls inside the filter. A stored
// date that fails to parse never matches a year or month filter.
func (f Filter) Match(t domain.Transaction) bool {
	switch f.Mode {
	case ModeYear, ModeMonth:
		when, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return false
		}
		if when.Year() != f.Year {
			return false
		}
		return f.Mode == ModeYear || when.Month() == f.Month
	case ModeDay:
		return t.Date == f.Day
	default:
		return true
	}
}

// Apply returns the subset of txs matching the filter, preserving order.
func Apply(f Filter, txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Compute aggregates the filtered set into the dashboard summary. An
// empty input yields zero totals and empty series, never an error.
func Compute(txs []domain.Transaction, mode Mode) domain.SpendingSummary {
	var income, expense float64

	// Category colors key off first-appearance order, fixed before the
	// by-value sort below; the color is an identity marker, not a rank.
	catTotals := map[string]float64{}
	var catOrder []string

	trendTotals := map[string]*domain.TrendPoint{}

	for _, t := range txs {
		if t.Type == domain.Income {
			income += t.Amount
		} else {
			expense += t.Amount
			if _, seen := catTotals[t.Category]; !seen {
				catOrder = append(catOrder, t.Category)
			}
			catTotals[t.Category] += t.Amount
		}

		key := bucketKey(t, mode)
		point, ok := trendTotals[key]
		if !ok {
			point = &domain.TrendPoint{Bucket: key}
			trendTotals[key] = point
		}
		if t.Type == domain.Income {
			point.Income += t.Amount
		} else {
			point.Expense += t.Amount
		}
	}

	breakdown := make([]domain.CategoryEntry, 0, len(catOrder))
	for i, name := range catOrder {
		breakdown = append(breakdown, domain.CategoryEntry{
			Name:  name,
			Value: catTotals[name],
			Color: domain.Palette[i%len(domain.Palette)],
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Value > breakdown[j].Value
	})

	trend := make([]domain.TrendPoint, 0, len(trendTotals))
	for _, p := range trendTotals {
		trend = append(trend, *p)
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Bucket < trend[j].Bucket
	})

	return domain.SpendingSummary{
		TotalIncome:       income,
		TotalExpense:      expense,
		Balance:           income - expense,
		CategoryBreakdown: breakdown,
		MonthlyTrend:      trend,
	}
}

// bucketKey picks the trend granularity: one bar per day when zoomed to a
// month or a single day, one bar per month otherwise. Lexicographic order
// of the keys equals chronological order.
func bucketKey(t domain.Transaction, mode Mode) string {
	if mode == ModeDay || mode == ModeMonth {
		return t.Date
	}
	if when, err := time.Parse("2006-01-02", t.Date); err == nil {
		return when.Format("2006-01")
	}
	if len(t.Date) >= 7 {
		return t.Date[:7]
	}
	return t.Date
}

// Years lists the distinct calendar years present in the set plus the
// current year, newest first.
func Years(txs []domain.Transaction, now time.Time) []int {
	seen := map[int]bool{now.Year(): true}
	for _, t := range txs {
		if when, err := time.Parse("2006-01-02", t.Date); err == nil {
			seen[when.Year()] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
