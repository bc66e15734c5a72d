package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"igfeed/pkg/auth"
	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/logger"
	"igfeed/pkg/models"
	"igfeed/pkg/publish"
	"igfeed/pkg/ui"
	"igfeed/pkg/updater"
)

var (
	// Update command flags
	sourceFlag string
	noBackup   bool
	manualDir  string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the gallery slots once",
	Long: `Select the latest posts from the first working source, write them into the
six gallery slots and record the result as JSON for the site.

The run exits non-zero when no source yields posts, the batch is rejected or
the record cannot be written. Slots that fail to download are reported but
do not fail the run; the previous image stays in place.`,
	Example: `  # Normal run using the configured fallback chain
  igfeed update

  # Only use the newest images from a local folder
  igfeed update --source manual --manual-dir ~/Pictures/shop

  # Refresh a site checked out elsewhere without keeping a backup
  igfeed update --site /srv/www/boutique --no-backup`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	addUpdateFlags(updateCmd)
}

func addUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sourceFlag, "source", "", "use only this source (api, scrape, manual, placeholder)")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not back up the current slot images")
	cmd.Flags().StringVar(&manualDir, "manual-dir", "", "directory scanned by the manual source")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return errRunFailed
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err)
		return errRunFailed
	}
	log := logger.GetLogger()

	ui.PrintInfo("Site", cfg.Site.Root)
	ui.PrintInfo("Sources", strings.Join(cfg.SourceChain(), " -> "))

	progress := ui.NewSlotProgress(models.MaxSlots)
	u, err := updater.New(cfg, updater.Options{
		Token: storedToken(cfg, log),
		OnSlot: func(o publish.SlotOutcome) {
			progress.Tick(o.Slot, o.OK())
		},
	}, log)
	if err != nil {
		ui.PrintError("Failed to set up update", err)
		return errRunFailed
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := u.Run(ctx)
	progress.Finish()

	printSummary(result)

	if err != nil {
		if errors.Is(err, errs.ErrInsufficientCandidates) {
			ui.PrintError("Batch rejected", err)
		} else {
			ui.PrintError("Update failed", err)
		}
		return errRunFailed
	}
	if !result.OK() {
		ui.PrintError("Gallery update incomplete")
		return errRunFailed
	}

	if failed := len(result.Report.Failed()); failed > 0 {
		ui.PrintWarning(fmt.Sprintf("Gallery updated from %s with %d failed slots", result.Source, failed))
		return nil
	}
	ui.PrintSuccess(fmt.Sprintf("Gallery updated from %s", result.Source))
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// storedToken returns the access token from the credential store when the
// configuration only carries the template value
func storedToken(cfg *config.Config, log logger.Logger) string {
	token := strings.TrimSpace(cfg.Instagram.AccessToken)
	if token != "" && token != config.PlaceholderAccessToken {
		return ""
	}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Debug("Credential store unavailable")
		return ""
	}
	return manager.Token(cfg.Instagram.UserID)
}

func printSummary(result *updater.Result) {
	if result == nil || ui.Quiet() {
		return
	}

	for _, a := range result.Attempts {
		status := ui.Green(fmt.Sprintf("%d posts", a.Posts))
		if a.Err != nil {
			status = ui.Red(a.Err.Error())
		}
		ui.PrintInfo(fmt.Sprintf("  %-11s", a.Source), status)
	}

	if result.Report == nil {
		return
	}

	for _, o := range result.Report.Failed() {
		ui.PrintWarning(fmt.Sprintf("Slot %d (%s) not updated", o.Slot, o.PostID), o.Err)
	}

	ui.PrintInfo("Updated", fmt.Sprintf("%d/%d slots, %s",
		result.Report.Succeeded(), len(result.Report.Outcomes),
		humanize.Bytes(uint64(result.Report.TotalBytes()))))
	if result.Report.BackupDir != "" {
		ui.PrintInfo("Backup", result.Report.BackupDir)
	}
	if result.RecordPath != "" {
		ui.PrintInfo("Record", result.RecordPath)
	}
}
