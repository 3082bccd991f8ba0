package interfaces

import (
	"context"

	"form_automation/domain/entities"
)

// InputGate is the channel through which a live person supplies missing data.
// At most one request is outstanding per session at any time.
type InputGate interface {
	// Request suspends until the observer answers, the wait times out, or
	// ctx is canceled. fieldName correlates the answer; a second request
	// for a field that already has one pending is rejected.
	Request(ctx context.Context, fieldName string) (entities.UserInput, error)

	// Resolve delivers the observer's answer to the pending request
	Resolve(input entities.UserInput)

	// Discard resolves any pending request with an error so no goroutine
	// is left suspended; called on session teardown
	Discard()
}
