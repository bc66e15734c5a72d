// Package updater runs one gallery refresh: select posts, publish them
// into the slot files, then record what was attempted.
package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"igfeed/pkg/config"
	errs "igfeed/pkg/errors"
	"igfeed/pkg/instagram"
	"igfeed/pkg/logger"
	"igfeed/pkg/metadata"
	"igfeed/pkg/publish"
	"igfeed/pkg/source"
)

// Result describes one run
type Result struct {
	RunID      string
	Source     string
	Attempts   []source.Attempt
	Report     *publish.Report
	RecordPath string
}

// OK reports whether posts were selected, published and recorded. Failed
// slots do not make a run fail; see Report.Failed.
func (r *Result) OK() bool {
	return r != nil && r.Report != nil && r.RecordPath != ""
}

// Options customise an Updater. Zero values fall back to real clients and the wall clock.
type Options struct {
	// Token overrides the configured access token, e.g. from the credential store
	Token string

	// Clients replaces the Instagram clients used by the remote sources
	Clients source.Clients

	// Downloader replaces the HTTP client used to fetch remote slot images
	Downloader publish.Downloader

	// Now is the clock used for backups, placeholders and the record
	Now func() time.Time

	// OnSlot is forwarded to the publisher
	OnSlot func(publish.SlotOutcome)
}

// Updater wires the selector, publisher and recorder for one site
type Updater struct {
	selector  *source.Selector
	publisher *publish.Publisher
	recorder  *metadata.Recorder
	now       func() time.Time
	logger    logger.Logger
}

// New builds an Updater from configuration
func New(cfg *config.Config, opts Options, log logger.Logger) (*Updater, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	timeout := cfg.Settings.DownloadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	if opts.Clients.Graph == nil {
		opts.Clients.Graph = instagram.NewGraphClient(timeout, log)
	}
	web := instagram.NewWebClient(timeout, cfg.Instagram.UserAgent, log)
	if opts.Clients.Profiles == nil {
		opts.Clients.Profiles = web
	}
	if opts.Clients.Downloader == nil {
		opts.Clients.Downloader = web
	}
	if opts.Downloader == nil {
		opts.Downloader = instagram.NewClient(timeout, log)
	}

	chain, err := source.BuildChain(cfg, opts.Clients, opts.Token, opts.Now, log)
	if err != nil {
		return nil, fmt.Errorf("invalid source chain: %w", err)
	}

	return &Updater{
		selector: source.NewSelector(log, chain...),
		publisher: publish.NewPublisher(cfg.ImagesPath(), opts.Downloader, publish.Options{
			Backup: cfg.Settings.BackupOldImages,
			Now:    opts.Now,
			OnSlot: opts.OnSlot,
		}, log),
		recorder: metadata.NewRecorder(cfg.MetadataPath(), log),
		now:      opts.Now,
		logger:   log,
	}, nil
}

// Run performs a single refresh. The returned Result is never nil.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := u.logger.WithField("run_id", result.RunID)
	start := u.now()

	log.Info("Gallery update started")

	defer func() {
		if err := u.selector.Cleanup(); err != nil {
			log.WithError(err).Warn("Failed to clean up transient files")
		}
	}()

	sel, err := u.selector.Select(ctx)
	result.Attempts = sel.Attempts
	if err != nil {
		if errors.Is(err, errs.ErrInsufficientCandidates) {
			log.WithError(err).Error("Batch rejected, nothing published")
		} else {
			log.WithError(err).Error("No posts retrieved, aborting")
		}
		return result, err
	}
	result.Source = sel.Source

	report, err := u.publisher.Publish(ctx, sel.Posts)
	if err != nil {
		log.WithError(err).Error("Failed to prepare images directory")
		return result, fmt.Errorf("publish failed: %w", err)
	}
	result.Report = report

	if err := u.recorder.Record(sel.Posts, u.now()); err != nil {
		log.WithError(err).Error("Failed to record metadata")
		return result, fmt.Errorf("record failed: %w", err)
	}
	result.RecordPath = u.recorder.Path()

	log.InfoWithFields("Gallery update finished", map[string]interface{}{
		"source":    result.Source,
		"updated":   report.Succeeded(),
		"failed":    len(report.Failed()),
		"written":   humanize.Bytes(uint64(report.TotalBytes())),
		"took":      u.now().Sub(start).String(),
		"backup":    report.BackupDir,
		"attempted": len(sel.Posts),
	})

	return result, nil
}
