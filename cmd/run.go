package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dealerops/ticketscope/internal/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract, combine and process in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runExtract(cmd)
		if err != nil {
			return err
		}
		if !result.Succeeded() {
			return errors.New("no files were downloaded successfully")
		}

		combined, err := runCombine(cmd)
		if err != nil {
			return err
		}
		if combined == "" {
			utils.Log.Warn("Nothing to combine, skipping processing")
			return nil
		}

		return runProcess(cmd, combined)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("date", "", "Report date in dd-mm-yyyy (default: yesterday)")
	runCmd.Flags().String("downloads", "", "Download directory (default from config)")
	runCmd.Flags().Bool("headless", true, "Run the browser headless")
	runCmd.Flags().Int("timeout", 10, "Per-stage element wait in seconds")
	runCmd.Flags().Bool("clean", true, "Clear stale files from the download directory first")
	runCmd.Flags().Bool("concat", false, "Concatenate all rows into one tagged sheet instead of one sheet per file")
}
