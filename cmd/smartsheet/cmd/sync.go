package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aditsw/smartsheet/internal/assistant"
	"github.com/aditsw/smartsheet/internal/config"
	"github.com/aditsw/smartsheet/internal/domain"
	"github.com/aditsw/smartsheet/internal/sheet"
	"github.com/aditsw/smartsheet/internal/summary"
)

var (
	syncURL  string
	syncSave bool
	syncDemo bool
)

// syncCmd performs a one-shot fetch and prints totals.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the sheet once and print a summary",
	Long: `Fetch the configured sheet (or --url), run categorization over
any uncategorized rows, and print the resulting totals.

Example:
  smartsheet sync --url "https://script.google.com/macros/s/XXX/exec" --save`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncURL, "url", "", "sheet URL (overrides config)")
	syncCmd.Flags().BoolVar(&syncSave, "save", false, "persist the URL for future sessions")
	syncCmd.Flags().BoolVar(&syncDemo, "demo", false, "summarize the built-in sample data instead of a sheet")
}

func runSync(cmd *cobra.Command, args []string) {
	if syncDemo {
		printSummary("demo", domain.SampleTransactions())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	url := syncURL
	if url == "" {
		url = cfg.Sheet.URL
	}
	if url == "" {
		fmt.Fprintln(os.Stderr, "Error: no sheet URL; pass --url or connect one first")
		os.Exit(1)
	}

	ctx := context.Background()

	var ai *assistant.Assistant
	if cfg.Gemini.APIKey != "" {
		if ai, err = assistant.New(ctx, cfg.Gemini.APIKey, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to create assistant")
		}
	}

	book := newLedger(ai)
	book.SetSource(sheet.NewClient(url))

	if err := book.Sync(ctx); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	if syncSave {
		if err := config.SaveSheetURL(url); err != nil {
			log.Warn().Err(err).Msg("Failed to persist sheet URL")
		}
	}

	printSummary(string(sheet.DetectMode(url)), book.Transactions())
}

func printSummary(mode string, txs []domain.Transaction) {
	totals := summary.Compute(txs, summary.ModeAll)

	fmt.Printf("Mode:     %s\n", mode)
	fmt.Printf("Rows:     %d\n", len(txs))
	fmt.Printf("Income:   %.2f\n", totals.TotalIncome)
	fmt.Printf("Expense:  %.2f\n", totals.TotalExpense)
	fmt.Printf("Balance:  %.2f\n", totals.Balance)
	for _, c := range totals.CategoryBreakdown {
		fmt.Printf("  %-20s %.2f\n", c.Name, c.Value)
	}
}
