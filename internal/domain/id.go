package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ManualID returns an id for a manually entered transaction.
func ManualID() string {
	return fmt.Sprintf("id-%d", time.Now().UnixMilli())
}

// GeneratedID returns an id for a script-mode row that arrived without one.
func GeneratedID() string {
	return "gen-" + shortUUID()
}

// SheetRowID returns an id for a CSV row when no id column was detected.
// The row index keeps ids stable-ish across re-imports of the same sheet.
func SheetRowID(row int) string {
	return fmt.Sprintf("sheet-%d-%s", row, shortUUID())
}

func shortUUID() string {
	return uuid.NewString()[:8]
}
