package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igfeed/pkg/config"
	"igfeed/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	siteRoot   string
)

// errRunFailed is returned once the failure has already been reported to the user
var errRunFailed = errors.New("gallery update failed")

var rootCmd = &cobra.Command{
	Use:   "igfeed",
	Short: "Refresh the latest Instagram posts gallery of a static site",
	Long: `igfeed keeps the "latest Instagram posts" section of a static site current.

Each run picks the first source that yields posts:
  - api          Instagram Graph API (access token + user id)
  - scrape       public profile endpoint of the configured username
  - manual       newest images in a local directory (preferred: manual)
  - placeholder  branded placeholder images

The chosen posts are written to images/instagram-1.jpg .. instagram-6.jpg,
the previous images are backed up and a JSON record is written for the site.

Running igfeed without a subcommand performs an update.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetQuiet(quiet)

		if cmd.Name() != "version" && cmd.Name() != "help" {
			ui.PrintBanner()
		}
	},
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			ui.PrintError("Error", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igfeed.yaml or $HOME/.igfeed.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().StringVar(&siteRoot, "site", "", "root directory of the static site")

	addUpdateFlags(rootCmd)

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.SetVersionTemplate(`igfeed {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig merges the config file, environment and the flags that were set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := make(map[string]interface{})
	if siteRoot != "" {
		flags["site"] = siteRoot
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if f := cmd.Flags().Lookup("source"); f != nil && f.Changed {
		flags["source"] = sourceFlag
	}
	if f := cmd.Flags().Lookup("no-backup"); f != nil && f.Changed {
		flags["no-backup"] = noBackup
	}
	if f := cmd.Flags().Lookup("manual-dir"); f != nil && f.Changed {
		flags["manual-dir"] = manualDir
	}

	return config.Load(configFile, flags)
}
