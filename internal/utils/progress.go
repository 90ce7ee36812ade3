package utils

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

// Standard progress bar descriptions
const (
	DescResolving   = "Resolving"
	DescDownloading = "Downloading"
	DescCompressing = "Compressing"
)

// NewProgressBar creates a consistently styled progress bar.
//
// Parameters:
//   - total: Total number of items. Use -1 for unknown totals (indeterminate/spinner mode).
//   - description: Text description to show before the progress bar.
//
// For unknown totals a spinner is rendered; known totals show count and iterations/second.
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	return newProgressBar(os.Stderr, total, description)
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}

// BarObserver renders progress events on a 0-100 terminal bar.
// It implements domain.Observer.
type BarObserver struct {
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	last domain.ProgressEvent
}

// NewBarObserver creates an observer writing to w (stderr when nil)
func NewBarObserver(w io.Writer) *BarObserver {
	if w == nil {
		w = os.Stderr
	}
	return &BarObserver{bar: newProgressBar(w, 100, DescResolving)}
}

// OnProgress implements domain.Observer
func (o *BarObserver) OnProgress(event domain.ProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.last = event
	if event.Message != "" {
		o.bar.Describe(event.Message)
	}
	switch event.Status {
	case domain.StatusDone:
		_ = o.bar.Set(100)
		_ = o.bar.Finish()
	case domain.StatusError:
		_ = o.bar.Exit()
	default:
		_ = o.bar.Set(event.Percent)
	}
}

// Last returns the most recent event
func (o *BarObserver) Last() domain.ProgressEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}
