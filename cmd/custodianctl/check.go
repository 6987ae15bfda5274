package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"custodian/internal/app"
	"custodian/internal/compliance"
)

var checkCmd = &cobra.Command{
	Use:   "check <framework>",
	Short: "Run a compliance check for a framework",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			summary, err := a.Compliance.CheckCompliance(ctx, compliance.Framework(strings.ToLower(args[0])))
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s score %d (%d passed, %d failed of %d)\n\n",
				summary.Framework, summary.Score, summary.Passed, summary.Failed, summary.TotalPolicies)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "POLICY\tTYPE\tSTATUS\tSCORE")
			for _, c := range summary.Checks {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.PolicyName, c.PolicyType, c.Status, c.Score)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(summary.Recommendations) > 0 {
				fmt.Fprintln(out, "\nRecommendations:")
				for _, r := range summary.Recommendations {
					fmt.Fprintf(out, "  - %s\n", r)
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
