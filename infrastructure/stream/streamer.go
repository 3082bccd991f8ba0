package stream

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// defaultInterval drains at ~10 frames per second
const defaultInterval = 100 * time.Millisecond

// Streamer owns the session's screenshot buffer: producers push frames from
// the automation flow, a single consumer goroutine drains them in FIFO order
// on a fixed cadence. On cancellation every buffered frame is flushed before
// the consumer exits; no frame is dropped on normal shutdown.
type Streamer struct {
	mu       sync.Mutex
	frames   []entities.Frame
	reporter interfaces.ProgressReporter
	interval time.Duration
	logger   *logrus.Logger
	done     chan struct{}
}

// NewStreamer - creates a streamer emitting to the given reporter
func NewStreamer(reporter interfaces.ProgressReporter, logger *logrus.Logger) *Streamer {
	return &Streamer{
		reporter: reporter,
		interval: defaultInterval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Push - appends a frame to the buffer. Safe for concurrent producers.
func (s *Streamer) Push(frame entities.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
}

// Run - consumes the buffer until ctx is canceled, then flushes whatever
// remains. Intended to run on its own goroutine; Done reports completion.
func (s *Streamer) Run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case <-ticker.C:
			if frame, ok := s.pop(); ok {
				s.reporter.Frame(frame)
			}
		}
	}
}

// Done - closed once the consumer has flushed and exited
func (s *Streamer) Done() <-chan struct{} {
	return s.done
}

func (s *Streamer) pop() (entities.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return entities.Frame{}, false
	}
	frame := s.frames[0]
	s.frames = s.frames[1:]
	return frame, true
}

func (s *Streamer) flush() {
	s.mu.Lock()
	remaining := s.frames
	s.frames = nil
	s.mu.Unlock()

	if len(remaining) > 0 {
		s.logger.Infof("Flushing %d buffered frames on shutdown", len(remaining))
	}
	for _, frame := range remaining {
		s.reporter.Frame(frame)
	}
}
