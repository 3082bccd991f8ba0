package session

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"form_automation/application/automation"
	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
	"form_automation/infrastructure/browser"
	"form_automation/infrastructure/gate"
	"form_automation/infrastructure/stream"
)

const captureInterval = time.Second

// Config holds per-session behavior switches, read once from the environment
type Config struct {
	InputTimeout        time.Duration
	RequireConfirmation bool
	PromptOnEmpty       bool
	ContinuousCapture   bool
}

// ConfigFromEnv - builds a Config from environment variables with the
// documented defaults
func ConfigFromEnv() Config {
	cfg := Config{
		InputTimeout:  5 * time.Minute,
		PromptOnEmpty: true,
	}
	if v := os.Getenv("USER_INPUT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.InputTimeout = d
		}
	}
	cfg.RequireConfirmation = envBool("REQUIRE_CONFIRMATION", false)
	cfg.PromptOnEmpty = envBool("PROMPT_ON_EMPTY", true)
	cfg.ContinuousCapture = envBool("CONTINUOUS_CAPTURE", false)
	return cfg
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Session owns everything one automation run needs: its browser, its
// human-input gate, its screenshot streamer, and the cancel handle. The
// browser page is only ever touched by the Run goroutine.
type Session struct {
	ID string

	interpreter interfaces.FormInterpreter
	reporter    interfaces.ProgressReporter
	gate        *gate.Gate
	browser     interfaces.Browser
	cfg         Config
	logger      *logrus.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	canceled bool
	done     chan struct{}

	// captureEvery overrides the continuous-capture cadence; zero means the
	// default
	captureEvery time.Duration
}

// New - builds a session with its own browser instance. The caller provides
// the interpreter (stateless, shared across sessions) and the reporter bound
// to the observer's websocket.
func New(id string, interpreter interfaces.FormInterpreter, reporter interfaces.ProgressReporter, cfg Config, logger *logrus.Logger) (*Session, error) {
	b, err := browser.NewBrowserController(logger)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:          id,
		interpreter: interpreter,
		reporter:    reporter,
		gate:        gate.New(cfg.InputTimeout, logger),
		browser:     b,
		cfg:         cfg,
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

// Run - executes the automation state machine to completion and tears the
// session down: the streamer flushes its remaining frames, the gate releases
// any waiter, the browser closes, and a final result event is emitted. Safe
// to call exactly once, normally on its own goroutine.
func (s *Session) Run(ctx context.Context, req entities.SubmissionRequest) {
	runCtx, cancel := context.WithCancel(ctx)
	s.arm(cancel)
	defer close(s.done)

	// The streamer gets its own context so it keeps consuming until every
	// producer has stopped; canceling it together with the run would let a
	// capture still in flight push a frame after the shutdown flush.
	streamCtx, stopStream := context.WithCancel(context.Background())
	streamer := stream.NewStreamer(s.reporter, s.logger)
	go streamer.Run(streamCtx)

	rec := automation.NewRecorder(s.browser, s.reporter, streamer, s.logger)
	captureDone := make(chan struct{})
	if s.cfg.ContinuousCapture {
		every := s.captureEvery
		if every == 0 {
			every = captureInterval
		}
		go func() {
			defer close(captureDone)
			rec.RunPeriodic(runCtx, every)
		}()
	} else {
		close(captureDone)
	}

	locator := automation.NewLocator(s.browser, s.interpreter, s.logger)
	filler := automation.NewFiller(s.browser, s.gate, s.reporter, rec, s.logger, automation.FillerOptions{
		PromptOnEmpty: s.cfg.PromptOnEmpty,
	})
	verifier := automation.NewVerifier(s.browser, rec)
	orchestrator := automation.NewOrchestrator(
		s.browser, s.interpreter, s.gate, s.reporter, rec,
		locator, filler, verifier, s.logger,
		automation.OrchestratorOptions{RequireConfirmation: s.cfg.RequireConfirmation},
	)

	status, err := orchestrator.Run(runCtx, req)

	// Stop every producer first, then the streamer, so the shutdown flush
	// sees each buffered frame and none is lost.
	cancel()
	<-captureDone
	stopStream()
	<-streamer.Done()

	s.gate.Discard()
	if closeErr := s.browser.Close(); closeErr != nil {
		s.logger.Warnf("Failed to close browser for session %s: %v", s.ID, closeErr)
	}

	message := resultMessage(status)
	if err != nil {
		message = err.Error()
	}
	s.reporter.Result(status, message)
	s.logger.Infof("Session %s finished with status %s", s.ID, status)
}

// Resolve - forwards a human answer to this session's gate
func (s *Session) Resolve(input entities.UserInput) {
	s.gate.Resolve(input)
}

// arm - installs the run's cancel handle; a Cancel that arrived before the
// Run goroutine got here takes effect immediately instead of being lost
func (s *Session) arm(cancel context.CancelFunc) {
	s.mu.Lock()
	s.cancel = cancel
	pending := s.canceled
	s.mu.Unlock()
	if pending {
		cancel()
	}
}

// Cancel - aborts the run; the Run goroutine handles teardown. Safe to call
// from any goroutine, including before Run has started.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.canceled = true
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done - closed once Run has fully torn the session down
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func resultMessage(status entities.RunStatus) string {
	switch status {
	case entities.RunStatusSucceeded:
		return "Form submitted successfully"
	case entities.RunStatusUnconfirmed:
		return "Form was submitted but confirmation could not be verified"
	case entities.RunStatusCanceled:
		return "Run canceled by user"
	default:
		return "Automation run failed"
	}
}
