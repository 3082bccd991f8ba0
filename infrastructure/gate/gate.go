package gate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

// defaultTimeout bounds every human-input wait; a run must never block
// indefinitely on an absent observer
const defaultTimeout = 5 * time.Minute

var (
	// ErrInputTimeout means the observer did not answer within the ceiling
	ErrInputTimeout = errors.New("user input request timed out")

	// ErrDuplicateRequest means a request for the same field is already pending
	ErrDuplicateRequest = errors.New("duplicate input request for pending field")

	// ErrRequestPending means another field's request is still outstanding
	ErrRequestPending = errors.New("another input request is pending")

	// ErrGateClosed means the session tore down while the request was pending
	ErrGateClosed = errors.New("input gate discarded")
)

// Gate is a per-session single-slot request/response channel between the
// automation flow and the human observer. At most one request is outstanding
// at a time; the sequential fill loop guarantees callers never race for it.
type Gate struct {
	mu           sync.Mutex
	pendingField string
	pendingCh    chan entities.UserInput
	timeout      time.Duration
	logger       *logrus.Logger
}

// New - creates a gate with the given wait ceiling; zero means the default
func New(timeout time.Duration, logger *logrus.Logger) *Gate {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gate{
		timeout: timeout,
		logger:  logger,
	}
}

// Request - suspends until Resolve delivers an answer for fieldName, the
// ceiling elapses, ctx is canceled, or the gate is discarded
func (g *Gate) Request(ctx context.Context, fieldName string) (entities.UserInput, error) {
	g.mu.Lock()
	if g.pendingCh != nil {
		pending := g.pendingField
		g.mu.Unlock()
		if pending == fieldName {
			return entities.UserInput{}, ErrDuplicateRequest
		}
		return entities.UserInput{}, ErrRequestPending
	}
	ch := make(chan entities.UserInput, 1)
	g.pendingCh = ch
	g.pendingField = fieldName
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		if g.pendingCh == ch {
			g.pendingCh = nil
			g.pendingField = ""
		}
		g.mu.Unlock()
	}()

	select {
	case input, ok := <-ch:
		if !ok {
			return entities.UserInput{}, ErrGateClosed
		}
		return input, nil
	case <-time.After(g.timeout):
		g.logger.Warnf("Input request for field '%s' timed out after %s", fieldName, g.timeout)
		return entities.UserInput{}, ErrInputTimeout
	case <-ctx.Done():
		return entities.UserInput{}, ctx.Err()
	}
}

// Resolve - delivers the observer's answer to the pending request. Answers
// with no pending request, or naming a different field, are dropped with a log.
func (g *Gate) Resolve(input entities.UserInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pendingCh == nil {
		g.logger.Warnf("Received user input with no pending request (field %q)", input.FieldName)
		return
	}
	if input.FieldName != "" && input.FieldName != g.pendingField {
		g.logger.Warnf("Received user input for field %q while %q is pending; dropped", input.FieldName, g.pendingField)
		return
	}

	select {
	case g.pendingCh <- input:
	default:
		// Slot already answered; duplicate delivery is dropped.
	}
}

// Discard - unblocks any pending request with ErrGateClosed so teardown never
// leaves a goroutine suspended
func (g *Gate) Discard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingCh != nil {
		close(g.pendingCh)
		g.pendingCh = nil
		g.pendingField = ""
	}
}

var _ interfaces.InputGate = (*Gate)(nil)
