package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// SlotProgress shows a bar that advances once per slot attempt
type SlotProgress struct {
	bar    *progressbar.ProgressBar
	failed int
}

// NewSlotProgress creates a bar for total slots on stderr. In quiet mode
// the bar writes nowhere.
func NewSlotProgress(total int) *SlotProgress {
	var w io.Writer = os.Stderr
	if quiet {
		w = io.Discard
	}
	return newSlotProgress(total, w)
}

func newSlotProgress(total int, w io.Writer) *SlotProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(15*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Updating slots[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &SlotProgress{bar: bar}
}

// Tick advances the bar by one slot
func (p *SlotProgress) Tick(slot int, ok bool) {
	if !ok {
		p.failed++
	}
	p.bar.Describe(fmt.Sprintf("[cyan]Slot %d[reset]", slot))
	_ = p.bar.Add(1)
}

// Failed returns the number of failed ticks
func (p *SlotProgress) Failed() int {
	return p.failed
}

// Finish completes the bar and moves to a new line
func (p *SlotProgress) Finish() {
	_ = p.bar.Finish()
	_ = p.bar.Exit()
}
