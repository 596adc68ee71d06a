package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/telework/app"
)

var commuteFlags struct {
	roster string
	out    string
}

var commuteCmd = &cobra.Command{
	Use:   "commute",
	Short: "Geocode the roster and compute every employee's commute",
	RunE:  runCommute,
}

func init() {
	commuteCmd.Flags().StringVar(&commuteFlags.roster, "roster", "", "employee roster (CSV or XLSX)")
	commuteCmd.Flags().StringVarP(&commuteFlags.out, "out", "o", "", "commute dataset CSV")
	rootCmd.AddCommand(commuteCmd)
}

func runCommute(cmd *cobra.Command, _ []string) error {
	if commuteFlags.roster != "" {
		cfg.Roster.Path = commuteFlags.roster
	}
	if commuteFlags.out != "" {
		cfg.Commute.Output = commuteFlags.out
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		sum, err := svc.Commute(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s: %d employees, %d routed, %d flagged, %d cached addresses\n",
			sum.RunID, sum.Employees, sum.Routed, sum.Flagged, sum.Cached)
		for _, p := range sum.Outputs {
			fmt.Fprintf(w, "wrote %s\n", p)
		}
		return nil
	})
}
