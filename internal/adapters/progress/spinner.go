package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/baolabs/bao-deploy/internal/usecase"
)

// SpinnerSink implements progress reporting with a terminal spinner
type SpinnerSink struct {
	spinner *spinner.Spinner
}

// NewSpinnerSink creates a new spinner-based progress sink
func NewSpinnerSink() *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.HideCursor = false
	return &SpinnerSink{spinner: s}
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Spinner {
		if !r.spinner.Active() {
			r.spinner.Start()
		}
		r.spinner.Suffix = " " + event.Message
		return
	}
	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if event.Message != "" {
		fmt.Println(color.GreenString("✓"), event.Message)
	}
}

// Info prints an info message, pausing the spinner if needed
func (r *SpinnerSink) Info(message string) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	fmt.Println(message)
	if wasActive {
		r.spinner.Start()
	}
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
	fmt.Println(color.RedString("✗"), message)
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
