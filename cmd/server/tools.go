package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Disha/internal/api"
	"github.com/soaringjerry/Disha/internal/services"
)

var (
	exportOut    string
	exportStatus string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every session as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()
		store, closeStore, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := services.NewExportService(store, store, log).ExportCSV(cmd.Context(), exportStatus, "cli")
		if err != nil {
			return err
		}
		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}
		if _, err := w.Write(res.Data); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if exportOut != "" && exportOut != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d row(s) to %s\n", res.Rows, exportOut)
		}
		return nil
	},
}

var (
	reportFormat string
	reportLocale string
)

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Render the report of a completed session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()
		store, closeStore, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		renderer, ok := RendererForCLI(reportFormat)
		if !ok {
			return fmt.Errorf("unsupported format %q", reportFormat)
		}
		sess, err := services.NewSessionService(store, store, log).Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, err := services.NewReportAssembler(newSummarizer(cmd.Context(), cfg, log), log).
			AssembleLocale(cmd.Context(), sess, reportLocale)
		if err != nil {
			return err
		}
		return renderer.Render(cmd.OutOrStdout(), doc)
	},
}

// RendererForCLI is api.RendererFor with a coloured terminal style.
func RendererForCLI(format string) (api.Renderer, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "terminal", "term":
		return api.TerminalRenderer{Style: "dark", Width: 100}, true
	default:
		return api.RendererFor(format)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Only sessions with this status (complete or incomplete)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "terminal", "terminal, markdown, json or html")
	reportCmd.Flags().StringVar(&reportLocale, "locale", "en", "Report label locale (en or ne)")
}
