package domain

const (
	// Uncategorized marks a transaction still waiting for enrichment.
	Uncategorized = "Uncategorized"

	// CategoryOther is the catch-all the enrichment collaborator falls
	// back to when it cannot classify a transaction.
	CategoryOther = "Other"

	// UnknownDescription is the sentinel for rows that arrive with no
	// usable description.
	UnknownDescription = "Unknown"
)

// Categories is the fixed vocabulary the enrichment collaborator chooses
// from.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Utilities",
	"Entertainment",
	"Shopping",
	"Health & Fitness",
	"Housing",
	"Income",
	"Other",
}

// Palette is the fixed chart color cycle. Breakdown entries pick a color
// by first-appearance index, modulo the palette length.
var Palette = []string{
	"#3b82f6",
	"#ef4444",
	"#10b981",
	"#f59e0b",
	"#8b5cf6",
	"#ec4899",
	"#06b6d4",
	"#6366f1",
	"#64748b",
}
