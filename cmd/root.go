package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/dealerops/ticketscope/internal/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ticketscope",
	Short: "Dealer service-ticket extraction and SLA reporting.",
	Long: `ticketscope drives the dealer helpline portal for a roster of accounts,
downloads each account's daily ticket report in both support tiers,
consolidates the exports into one workbook and computes SLA conformity
metrics against the contractual response and restoration thresholds.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ticketscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to the run ledger database (default from config)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".ticketscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.ticketscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	viper.SetDefault("portal.url", "")
	viper.SetDefault("downloads.dir", "downloads")
	viper.SetDefault("database.path", "ticketscope.sqlite")
	viper.SetDefault("accounts", []map[string]string{})
	// Exact calendar dates; must be re-supplied every year.
	viper.SetDefault("holidays", []string{
		"2025-01-26",
		"2025-03-14",
		"2025-08-15",
		"2025-10-02",
		"2025-10-20",
		"2025-10-21",
		"2025-10-22",
	})

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// fileDateLayout is the dd-mm-yyyy form used in artifact and report names.
const fileDateLayout = "02-01-2006"

// resolveDate parses the --date flag, defaulting to yesterday: the portal
// publishes complete figures for a day only after that day has ended.
func resolveDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		y := time.Now().AddDate(0, 0, -1)
		return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.Parse(fileDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, want dd-mm-yyyy: %w", raw, err)
	}
	return t, nil
}

// resolveDownloadsDir prefers the flag, then the config file.
func resolveDownloadsDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("downloads")
	if dir == "" {
		dir = viper.GetString("downloads.dir")
	}
	return dir
}

// resolveDBPath prefers the flag, then the config file.
func resolveDBPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("dbpath")
	if path == "" {
		path = viper.GetString("database.path")
	}
	return path
}
