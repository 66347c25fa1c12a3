// Command sunspot archives solar observation photos: it detects sunspots,
// hosts the images, and files each observation as a page in a Notion
// database.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sunspot",
	Short: "Sunspot observation archive",
	Long: `Archive solar observation photos into a Notion database.

Available subcommands:
  serve  - Run the HTTP submission service
  submit - Archive a single photo from the command line
  ledger - Show recent submissions from the local ledger`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// A missing .env is normal outside development.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
