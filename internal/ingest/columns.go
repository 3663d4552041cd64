// Package ingest turns raw spreadsheet payloads, delimited text or Apps
// Script JSON rows, into canonical transactions.
package ingest

import "strings"

// headerScanWindow bounds how many leading rows are inspected for a header.
const headerScanWindow = 10

// columnMap records which column carries each semantic field. Absent
// columns are -1.
type columnMap struct {
	Date        int
	Description int
	Amount      int
	ID          int
	Category    int
	Type        int
	Status      int
}

// detectColumns scans the leading rows of a delimited grid for the row
// most likely to be a header: the first row carrying both a date-like and
// an amount-like cell wins, and scanning stops there. Without a match the
// grid is assumed headerless with date, description and amount in columns
// 0-2; row 0 is still skipped as if it were a header.
func detectColumns(lines []string) (int, columnMap) {
	limit := len(lines)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}

	for i := 0; i < limit; i++ {
		cells := splitLine(lines[i])
		for j := range cells {
			cells[j] = strings.ToLower(cells[j])
		}

		cols := columnMap{
			Date:        findCell(cells, "date", "day"),
			Amount:      findCell(cells, "amount", "cost", "price", "harga"),
			Description: findCell(cells, "desc", "name", "merchant", "keterangan"),
			ID:          findCell(cells, "id"),
			Category:    findCell(cells, "category", "kategori"),
			Type:        findCell(cells, "type", "tipe"),
			Status:      findCell(cells, "status", "state"),
		}
		if cols.Date != -1 && cols.Amount != -1 {
			return i, cols
		}
	}

	return 0, columnMap{Date: 0, Description: 1, Amount: 2, ID: -1, Category: -1, Type: -1, Status: -1}
}

// findCell returns the index of the first cell containing any of the
// tokens, or -1.
func findCell(cells []string, tokens ...string) int {
	for i, c := range cells {
		for _, tok := range tokens {
			if strings.Contains(c, tok) {
				return i
			}
		}
	}
	return -1
}

// splitLine splits one line on commas, honoring double-quoted fields: a
// quote character toggles the in-quotes flag and separators inside quotes
// do not break fields. Leading/trailing quotes are stripped from each
// field after splitting, so malformed quoting degrades instead of failing.
func splitLine(line string) []string {
	var fields []string
	var cur strings.Builder

	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())

	for i := range fields {
		fields[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(fields[i]), `"`))
	}
	return fields
}
