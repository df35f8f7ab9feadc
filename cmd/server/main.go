// Command disha runs the career interest quiz server and its admin tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logMode    string
)

var rootCmd = &cobra.Command{
	Use:   "disha",
	Short: "Career interest (RIASEC) quiz server",
	Long: `Disha serves the Holland-code career interest quiz: respondent
registration, scoring, personalised reports and the admin dashboard API.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("DISHA_CONFIG"), "YAML config file (or set DISHA_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log encoder: production or development (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
