package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dealerops/ticketscope/internal/utils"
	"github.com/dealerops/ticketscope/pkg/report"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Merge the day's export files into one combined workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runCombine(cmd)
		return err
	},
}

func init() {
	rootCmd.AddCommand(combineCmd)
	combineCmd.Flags().String("date", "", "Report date in dd-mm-yyyy (default: yesterday)")
	combineCmd.Flags().String("downloads", "", "Download directory (default from config)")
	combineCmd.Flags().Bool("concat", false, "Concatenate all rows into one tagged sheet instead of one sheet per file")
	combineCmd.Flags().String("out", "", "Output workbook path (default: Combined_Report_{date}.xlsx in the download dir)")
}

// runCombine returns the combined workbook path, or "" when there was
// nothing to combine. Shared with `run`.
func runCombine(cmd *cobra.Command) (string, error) {
	date, err := resolveDate(cmd)
	if err != nil {
		return "", err
	}
	dateStr := date.Format(fileDateLayout)

	dir := resolveDownloadsDir(cmd)
	paths, err := report.FindArtifacts(dir, dateStr)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		utils.Log.Warnf("No export files found for %s in %s", dateStr, dir)
		return "", nil
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(dir, report.CombinedFileName(dateStr))
	}

	c := &report.Consolidator{Log: utils.Log}

	var written int
	if concat, _ := cmd.Flags().GetBool("concat"); concat {
		written, err = c.CombineTagged(paths, date.Format("2006-01-02"), out)
	} else {
		written, err = c.CombineSheets(paths, out)
	}
	if err != nil {
		return "", err
	}
	if written == 0 {
		utils.Log.Warnf("No valid, non-empty export files for %s", dateStr)
		return "", nil
	}

	utils.Log.Infof("Combined file saved as: %s", out)
	return out, nil
}
