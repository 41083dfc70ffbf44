package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dealerops/ticketscope/internal/utils"
	"github.com/dealerops/ticketscope/pkg/fleet"
	"github.com/dealerops/ticketscope/pkg/portal"
	"github.com/dealerops/ticketscope/pkg/storage"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Download the daily ticket reports for every configured account",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runExtract(cmd)
		if err != nil {
			return err
		}
		if !result.Succeeded() {
			return errors.New("no files were downloaded successfully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("date", "", "Report date in dd-mm-yyyy (default: yesterday)")
	extractCmd.Flags().String("downloads", "", "Download directory (default from config)")
	extractCmd.Flags().Bool("headless", true, "Run the browser headless")
	extractCmd.Flags().Int("timeout", 10, "Per-stage element wait in seconds")
	extractCmd.Flags().Bool("clean", true, "Clear stale files from the download directory first")
}

// runExtract drives the whole fleet and records each outcome in the run
// ledger. Shared with `run`.
func runExtract(cmd *cobra.Command) (*fleet.Result, error) {
	date, err := resolveDate(cmd)
	if err != nil {
		return nil, err
	}

	portalURL := viper.GetString("portal.url")
	if portalURL == "" {
		return nil, errors.New("portal.url is not configured")
	}

	var accounts []portal.Account
	if err := viper.UnmarshalKey("accounts", &accounts); err != nil {
		return nil, fmt.Errorf("reading accounts from config: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errors.New("no accounts configured")
	}

	downloadDir, err := filepath.Abs(resolveDownloadsDir(cmd))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, err
	}
	if clean, _ := cmd.Flags().GetBool("clean"); clean {
		cleanDownloadDir(downloadDir)
	}

	utils.Log.Infof("Processing data for date: %s", date.Format(fileDateLayout))

	ctx := cmd.Context()
	if err := portal.Preflight(ctx, portalURL, utils.Log); err != nil {
		return nil, err
	}

	headless, _ := cmd.Flags().GetBool("headless")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	sessCfg := portal.SessionConfig{
		URL:          portalURL,
		DownloadDir:  downloadDir,
		Locators:     portal.DefaultLocators(),
		TargetDate:   date,
		StageTimeout: time.Duration(timeoutSec) * time.Second,
	}

	runner := &fleet.Runner{
		Accounts: accounts,
		Modes:    portal.Modes(),
		Log:      utils.Log,
		NewSession: func(ctx context.Context, acct portal.Account) (fleet.Session, func(), error) {
			browserCtx, cancel, err := portal.NewBrowser(ctx, portal.BrowserConfig{
				Headless:    headless,
				DownloadDir: downloadDir,
			})
			if err != nil {
				return nil, func() {}, err
			}
			return portal.NewSession(browserCtx, sessCfg, acct, utils.Log), cancel, nil
		},
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return result, err
	}

	if err := recordRun(ctx, cmd, date, result); err != nil {
		utils.Log.Warnf("Could not record run in ledger: %v", err)
	}

	printSummary(result)
	return result, nil
}

// cleanDownloadDir removes leftovers from earlier runs so the snapshot
// diff never attributes a stale file to a fresh export.
func cleanDownloadDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err == nil {
			utils.Log.Debugf("Removed existing file: %s", path)
		}
	}
}

func recordRun(ctx context.Context, cmd *cobra.Command, date time.Time, result *fleet.Result) error {
	dbPath := resolveDBPath(cmd)

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.BeginRun(ctx, date.Format(fileDateLayout))
	if err != nil {
		return err
	}
	for _, o := range result.Outcomes {
		err := db.RecordOutcome(ctx, storage.Outcome{
			RunID:    runID,
			Account:  o.Account.ID,
			Dealer:   o.Account.Dealer,
			Mode:     o.Mode.Name,
			Status:   string(o.Status),
			Artifact: o.Path,
			Reason:   o.Reason,
		})
		if err != nil {
			return err
		}
	}
	return db.FinishRun(ctx, runID, len(result.Artifacts))
}

func printSummary(result *fleet.Result) {
	fmt.Printf("\nExtraction summary (%d artifacts):\n", len(result.Artifacts))
	for _, o := range result.Outcomes {
		switch o.Status {
		case fleet.StatusExtracted:
			fmt.Printf("  %-30s %-18s ok      %s\n", o.Account.Dealer, o.Mode.Name, filepath.Base(o.Path))
		case fleet.StatusEmpty:
			fmt.Printf("  %-30s %-18s empty\n", o.Account.Dealer, o.Mode.Name)
		default:
			fmt.Printf("  %-30s %-18s FAILED  %s\n", o.Account.Dealer, o.Mode.Name, o.Reason)
		}
	}
}
