// Package cmd provides the smartsheet CLI commands.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aditsw/smartsheet/internal/logger"
)

var (
	debug bool
	log   zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "smartsheet",
	Short: "Personal finance dashboard backed by a Google Sheet",
	Long: `smartsheet serves a personal finance dashboard API on top of a
Google Sheet. The sheet stays the system of record: a published CSV
link gives read-only access, an Apps Script web app URL enables
two-way sync with add and soft-delete.

Example:
  smartsheet serve --addr :8080
  smartsheet sync --url "https://docs.google.com/spreadsheets/d/.../pub?output=csv"
  smartsheet ask "where did my money go last month?"
  smartsheet script`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()

		log = logger.New()
		if !debug {
			log = log.Level(zerolog.InfoLevel)
		}
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(scriptCmd)
}
