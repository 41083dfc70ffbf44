package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dealerops/ticketscope/internal/utils"
	"github.com/dealerops/ticketscope/pkg/metrics"
	"github.com/dealerops/ticketscope/pkg/report"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Compute SLA conformity metrics from a combined workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		return runProcess(cmd, in)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("date", "", "Report date in dd-mm-yyyy (default: yesterday)")
	processCmd.Flags().String("downloads", "", "Download directory (default from config)")
	processCmd.Flags().String("in", "", "Combined workbook (default: Combined_Report_{date}.xlsx in the download dir)")
	processCmd.Flags().String("out", "", "Output workbook path (default: Processed_Combined_Report_{date}.xlsx)")
}

// runProcess derives the SLA columns for every sheet of the combined
// workbook. Shared with `run`.
func runProcess(cmd *cobra.Command, in string) error {
	date, err := resolveDate(cmd)
	if err != nil {
		return err
	}
	dateStr := date.Format(fileDateLayout)
	dir := resolveDownloadsDir(cmd)

	if in == "" {
		in = filepath.Join(dir, report.CombinedFileName(dateStr))
	}
	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("combined workbook not found: %s", in)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(dir, metrics.ProcessedFileName(dateStr))
	}
	// Overwrite output file if it exists
	_ = os.Remove(out)

	engine := metrics.NewEngine(viper.GetStringSlice("holidays"), utils.Log)
	if err := engine.ProcessWorkbook(in, out); err != nil {
		return err
	}

	utils.Log.Infof("Processed file saved as: %s", out)
	return nil
}
