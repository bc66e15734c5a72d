// Package publish writes a batch of posts into the gallery slot files.
package publish

import (
	"context"
	"fmt"
	"io"
	"time"

	"igfeed/pkg/logger"
	"igfeed/pkg/models"
	"igfeed/pkg/storage"
)

// Downloader streams a remote image into w
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// SlotOutcome is the result of writing one slot
type SlotOutcome struct {
	Slot   int
	PostID string
	Origin models.Origin
	Bytes  int64
	Err    error
}

// OK reports whether the slot was written
func (o SlotOutcome) OK() bool {
	return o.Err == nil
}

// Report summarises one publish pass
type Report struct {
	Outcomes  []SlotOutcome
	BackupDir string
}

// Succeeded returns the number of slots written
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed returns the outcomes of slots that could not be written
func (r *Report) Failed() []SlotOutcome {
	var failed []SlotOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// TotalBytes sums the bytes written across all slots
func (r *Report) TotalBytes() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += o.Bytes
	}
	return total
}

// Options controls a Publisher
type Options struct {
	// Backup copies existing slots aside before overwriting them
	Backup bool

	// Now stamps the backup directory; defaults to time.Now
	Now func() time.Time

	// OnSlot is called after every slot attempt
	OnSlot func(SlotOutcome)
}

// Publisher writes posts into slots 1..N of the images directory
type Publisher struct {
	imagesDir  string
	downloader Downloader
	opts       Options
	logger     logger.Logger
}

// NewPublisher creates a publisher for imagesDir
func NewPublisher(imagesDir string, downloader Downloader, opts Options, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Publisher{
		imagesDir:  imagesDir,
		downloader: downloader,
		opts:       opts,
		logger:     log,
	}
}

// Publish writes post i into slot i for every post up to MaxSlots. Slots
// beyond the batch are left untouched. A slot failure is recorded in the
// report and does not stop the remaining slots. Only failures to prepare
// the directory or the backup are returned as errors.
func (p *Publisher) Publish(ctx context.Context, posts []models.Post) (*Report, error) {
	store, err := storage.NewSlotStore(p.imagesDir)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	if p.opts.Backup {
		dir, err := store.Backup(p.opts.Now())
		if err != nil {
			return nil, err
		}
		report.BackupDir = dir
		p.logger.InfoWithFields("Existing images backed up", map[string]interface{}{
			"backup_dir": dir,
		})
	}

	for i, post := range models.Truncate(posts) {
		outcome := p.writeSlot(ctx, store, i+1, post)
		report.Outcomes = append(report.Outcomes, outcome)

		logger.LogSlot(p.logger, outcome.Slot, outcome.PostID, outcome.Bytes, outcome.Err)
		if p.opts.OnSlot != nil {
			p.opts.OnSlot(outcome)
		}
	}

	return report, nil
}

func (p *Publisher) writeSlot(ctx context.Context, store *storage.SlotStore, slot int, post models.Post) SlotOutcome {
	outcome := SlotOutcome{Slot: slot, PostID: post.ID, Origin: post.Origin()}

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}
	if err := post.Validate(); err != nil {
		outcome.Err = err
		return outcome
	}

	switch post.Origin() {
	case models.OriginLocal:
		outcome.Bytes, outcome.Err = store.CopyFileToSlot(slot, post.LocalPath)
	default:
		outcome.Bytes, outcome.Err = store.WriteSlotFunc(slot, func(w io.Writer) (int64, error) {
			return p.downloader.Download(ctx, post.ImageURL, w)
		})
	}

	if outcome.Err != nil {
		outcome.Bytes = 0
		outcome.Err = fmt.Errorf("slot %d (%s): %w", slot, post.ID, outcome.Err)
	}
	return outcome
}
