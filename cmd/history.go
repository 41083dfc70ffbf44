package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealerops/ticketscope/pkg/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past extraction runs from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := resolveDBPath(cmd)

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		showOutcomes, _ := cmd.Flags().GetBool("outcomes")
		for _, r := range runs {
			fmt.Printf("#%d  %s  started %s  artifacts=%d\n",
				r.ID, r.TargetDate, r.StartedAt.Format("2006-01-02 15:04:05"), r.Artifacts)

			if !showOutcomes {
				continue
			}
			outcomes, err := db.ListOutcomes(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				line := fmt.Sprintf("    %-30s %-18s %s", o.Dealer, o.Mode, o.Status)
				if o.Reason != "" {
					line += "  (" + o.Reason + ")"
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "How many runs to show")
	historyCmd.Flags().Bool("outcomes", false, "Also show per-account/mode outcomes")
}
