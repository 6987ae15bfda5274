package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"custodian/internal/app"
	"custodian/internal/audit"
)

var (
	exportFormat   string
	exportCategory string
	exportActor    string
	exportSince    time.Duration
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export audit entries as CSV or JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter := audit.Filter{
			Category: audit.Category(exportCategory),
			Actor:    exportActor,
		}
		if exportSince > 0 {
			start := time.Now().UTC().Add(-exportSince)
			filter.Start = &start
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			body, err := a.Audit.Export(ctx, audit.ExportFormat(strings.ToLower(exportFormat)), filter)
			if err != nil {
				return err
			}
			if exportOut == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(exportOut, body, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			log.Info("audit export written", "path", exportOut, "bytes", len(body))
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(audit.FormatCSV), "csv or json")
	exportCmd.Flags().StringVar(&exportCategory, "category", "", "only this category")
	exportCmd.Flags().StringVar(&exportActor, "actor", "", "only this actor")
	exportCmd.Flags().DurationVar(&exportSince, "since", 0, "only entries newer than this, e.g. 168h")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
