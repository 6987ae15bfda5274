package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"custodian/internal/app"
)

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List open data-subject requests past their deadline",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			overdue, err := a.DSR.OverdueRequests(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), overdue)
			}
			if len(overdue) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no overdue requests")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tDEADLINE\tDAYS OVERDUE")
			for _, r := range overdue {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Type, r.Status, r.Deadline.Format(time.DateOnly), r.DaysOverdue)
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(overdueCmd)
}
