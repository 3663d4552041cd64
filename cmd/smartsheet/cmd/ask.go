package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aditsw/smartsheet/internal/assistant"
	"github.com/aditsw/smartsheet/internal/config"
	"github.com/aditsw/smartsheet/internal/sheet"
)

// askCmd asks the insight assistant a question about the sheet.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant about your spending",
	Long: `Fetch the configured sheet and ask the assistant a free-text
question about it. With no question, a general spending analysis is
requested.

Example:
  smartsheet ask "what was my biggest expense in July?"`,
	Run: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Gemini.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY is not set")
		os.Exit(1)
	}
	if cfg.Sheet.URL == "" {
		fmt.Fprintln(os.Stderr, "Error: no sheet connected; run smartsheet sync --url ... --save first")
		os.Exit(1)
	}

	ctx := context.Background()

	ai, err := assistant.New(ctx, cfg.Gemini.APIKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create assistant")
	}

	book := newLedger(ai)
	book.SetSource(sheet.NewClient(cfg.Sheet.URL))
	if err := book.Sync(ctx); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println(ai.Insights(ctx, book.Transactions(), strings.Join(args, " ")))
}
