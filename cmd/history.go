package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/telework/app"
)

var historyCmd = &cobra.Command{
	Use:   "history EMPLOYEE_NUMBER",
	Short: "Show the commutes recorded for an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path is not configured")
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		entries, err := svc.History(ctx, args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no commute recorded for %s\n", args[0])
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COMPUTED\tRUN\tMILES\tMINUTES\tFLAGGED")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f\t%t\n",
				e.ComputedAt.Local().Format(time.DateTime), e.RunID, e.Miles, e.Minutes, e.Flagged)
		}
		return tw.Flush()
	})
}
