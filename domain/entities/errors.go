package entities

import "fmt"

// InterpretationError means a model response did not match the expected JSON
// contract. It is terminal for the current form page and is never retried.
type InterpretationError struct {
	Cause error
}

func (e *InterpretationError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Cause)
}

func (e *InterpretationError) Unwrap() error {
	return e.Cause
}
