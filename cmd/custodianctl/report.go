package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"custodian/internal/app"
	"custodian/internal/compliance"
)

var (
	reportStart string
	reportEnd   string
)

var reportCmd = &cobra.Command{
	Use:   "report <framework>",
	Short: "Generate and store a compliance report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -30)
		var err error
		if reportStart != "" {
			if start, err = time.Parse(time.DateOnly, reportStart); err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
		}
		if reportEnd != "" {
			if end, err = time.Parse(time.DateOnly, reportEnd); err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			framework := compliance.Framework(strings.ToLower(args[0]))
			r, err := a.Compliance.GenerateReport(ctx, framework, compliance.Period{Start: start, End: end})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), r)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s\n\nreport id: %s\n", r.Title, r.Summary, r.ID)
			return nil
		})
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportStart, "start", "", "period start (YYYY-MM-DD, default 30 days ago)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "period end (YYYY-MM-DD, default now)")
	rootCmd.AddCommand(reportCmd)
}
