package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"custodian/internal/app"
)

var (
	sweepDays       int
	sweepMaxRecords int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Apply the audit retention policy once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			job := a.RetentionJob()
			if cmd.Flags().Changed("days") {
				job.Options.RetentionDays = sweepDays
			}
			if cmd.Flags().Changed("max-records") {
				job.Options.MaxRecords = sweepMaxRecords
			}

			res, err := a.Audit.ApplyRetention(ctx, job.Options)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d entries, %d remaining\n", res.Deleted, res.Remaining)
			return nil
		})
	},
}

func init() {
	sweepCmd.Flags().IntVar(&sweepDays, "days", 0, "override audit.retention.days")
	sweepCmd.Flags().IntVar(&sweepMaxRecords, "max-records", 0, "override audit.retention.max_records (0 disables)")
	rootCmd.AddCommand(sweepCmd)
}
