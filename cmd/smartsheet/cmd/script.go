package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aditsw/smartsheet/internal/sheet"
)

// scriptCmd prints the Apps Script code for two-way sync.
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the Apps Script code for two-way sync",
	Long: `Print the Google Apps Script to paste into Extensions > Apps
Script on your sheet. Deploy it as a web app (execute as you, accessible
to anyone with the link) and connect the resulting /exec URL to enable
adds and deletes.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(sheet.AppsScriptTemplate)
	},
}
