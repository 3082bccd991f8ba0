package automation

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// FrameSink receives captured screenshots for eventual streaming
type FrameSink interface {
	Push(frame entities.Frame)
}

// Recorder emits progress logs to the observer and feeds screenshots into
// the session's frame buffer.
type Recorder struct {
	browser  interfaces.Browser
	reporter interfaces.ProgressReporter
	frames   FrameSink
	logger   *logrus.Logger
}

// NewRecorder - creates a recorder for one run
func NewRecorder(browser interfaces.Browser, reporter interfaces.ProgressReporter, frames FrameSink, logger *logrus.Logger) *Recorder {
	return &Recorder{
		browser:  browser,
		reporter: reporter,
		frames:   frames,
		logger:   logger,
	}
}

// Log - emits one progress-log line
func (r *Recorder) Log(message string) {
	r.logger.Info(message)
	r.reporter.Log(message)
}

// Capture - takes a screenshot and buffers it tagged with the description.
// Capture failures are logged and absorbed; they never fail the step.
func (r *Recorder) Capture(ctx context.Context, description string) {
	shot, err := r.browser.Screenshot(ctx)
	if err != nil {
		r.logger.Warnf("Failed to take screenshot: %v", err)
		return
	}
	r.frames.Push(entities.Frame{
		Description: description,
		Screenshot:  base64.StdEncoding.EncodeToString(shot),
	})
}

// RunPeriodic - captures one frame per interval regardless of run progress,
// until ctx is canceled. Runs on its own goroutine when continuous capture
// is enabled.
func (r *Recorder) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Capture(ctx, "Continuous capture")
		}
	}
}
